package main

import (
	"context"
	"log"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizmentor/quizmentor-backend/internal/api/http"
	"github.com/quizmentor/quizmentor-backend/internal/ai"
	"github.com/quizmentor/quizmentor-backend/internal/auth"
	"github.com/quizmentor/quizmentor-backend/internal/config"
	"github.com/quizmentor/quizmentor-backend/internal/logging"
	"github.com/quizmentor/quizmentor-backend/internal/quiz"
	"github.com/quizmentor/quizmentor-backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(string(cfg.Mode))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, closeStore, err := store.Open(ctx, store.Driver(cfg.StoreDriver), cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatalw("store open failed", "driver", cfg.StoreDriver, "err", err)
	}
	defer func() { _ = closeStore(context.Background()) }()

	users := auth.NewUsers(db.Collection("users"))
	quizzes := quiz.NewService(db.Collection("quizzes"), logger)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.SessionSecret, cfg.Mode == config.ModeProd)
	var verifier auth.TokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		logger.Warnw("GOOGLE_CLIENT_ID not set; sign-in disabled")
	}

	// --- Completion oracle, constructed once at startup ---
	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatalw("gemini client init failed", "err", err)
		}
		generator = client
	} else {
		logger.Warnw("GOOGLE_API_KEY not set; AI features disabled")
	}
	aiSvc := ai.NewService(generator, quizzes, logger)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Use(auth.Sessions(authSvc, users))

		ar.Post("/auth/google/callback", api.GoogleCallbackHandler(verifier, users, authSvc, logger))
		ar.Get("/auth/status", api.AuthStatusHandler())
		ar.With(auth.Require).Post("/auth/logout", api.LogoutHandler(authSvc, logger))

		// Open to guests; per-operation auth rules live in the services.
		ar.Get("/quizzes", api.ListQuizzesHandler(quizzes))
		ar.Post("/quizzes/generate", api.GenerateQuizHandler(aiSvc))
		ar.Post("/chat", api.ChatHandler(aiSvc))

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Require)
			pr.Post("/quizzes", api.CreateQuizHandler(quizzes))
			pr.Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes))
			pr.Put("/quizzes/{quizID}", api.UpdateQuizHandler(quizzes))
			pr.Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizzes))
		})
	})

	r.Get("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) { w.WriteHeader(nethttp.StatusOK) })

	logger.Infow("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "store", cfg.StoreDriver)
	if err := nethttp.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatalw("server failed", "err", err)
	}
}
