package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizmentor/quizmentor-backend/internal/ai"
	"github.com/quizmentor/quizmentor-backend/internal/auth"
	"github.com/quizmentor/quizmentor-backend/internal/quiz"
	"github.com/quizmentor/quizmentor-backend/internal/store"
)

type stubOracle struct {
	reply string
	err   error
}

func (o *stubOracle) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.reply, nil
}

type stubVerifier struct {
	ident auth.Identity
	err   error
}

func (v *stubVerifier) Verify(ctx context.Context, credential string) (auth.Identity, error) {
	if v.err != nil {
		return auth.Identity{}, v.err
	}
	return v.ident, nil
}

type testEnv struct {
	router   nethttp.Handler
	db       *store.MemoryDatabase
	users    *auth.Users
	sessions *auth.AuthService
	oracle   *stubOracle
	verifier *stubVerifier
}

const oracleReply = `{"questions":[{"question_text":"Q1","answers":[{"answer_text":"A","is_correct":true},{"answer_text":"B","is_correct":false}]}]}`

// newTestEnv wires the API the same way main.go does, minus the outer
// middleware stack.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := store.NewMemoryDatabase()
	logger := zap.NewNop().Sugar()
	users := auth.NewUsers(db.Collection("users"))
	quizzes := quiz.NewService(db.Collection("quizzes"), logger)
	sessions := auth.NewAuthService("test-secret", false)
	oracle := &stubOracle{reply: oracleReply}
	verifier := &stubVerifier{ident: auth.Identity{Subject: "sub-1", Email: "u@example.com", Name: "U"}}
	aiSvc := ai.NewService(oracle, quizzes, logger)

	r := chi.NewRouter()
	r.Route("/api", func(ar chi.Router) {
		ar.Use(auth.Sessions(sessions, users))

		ar.Post("/auth/google/callback", GoogleCallbackHandler(verifier, users, sessions, logger))
		ar.Get("/auth/status", AuthStatusHandler())
		ar.With(auth.Require).Post("/auth/logout", LogoutHandler(sessions, logger))

		ar.Get("/quizzes", ListQuizzesHandler(quizzes))
		ar.Post("/quizzes/generate", GenerateQuizHandler(aiSvc))
		ar.Post("/chat", ChatHandler(aiSvc))

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Require)
			pr.Post("/quizzes", CreateQuizHandler(quizzes))
			pr.Get("/quizzes/{quizID}", GetQuizHandler(quizzes))
			pr.Put("/quizzes/{quizID}", UpdateQuizHandler(quizzes))
			pr.Delete("/quizzes/{quizID}", DeleteQuizHandler(quizzes))
		})
	})

	return &testEnv{router: r, db: db, users: users, sessions: sessions, oracle: oracle, verifier: verifier}
}

// login creates an account and returns its session cookie.
func (e *testEnv) login(t *testing.T, subject string) *nethttp.Cookie {
	t.Helper()
	u, err := e.users.ResolveOrCreate(context.Background(), auth.Identity{
		Subject: subject,
		Email:   subject + "@example.com",
		Name:    "User " + subject,
	})
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	token, err := e.sessions.IssueJWT(u.ID.Hex())
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	return &nethttp.Cookie{Name: auth.SessionCookie, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *nethttp.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func validQuizBody() map[string]any {
	return map[string]any{
		"title": "Cells",
		"topic": "biology",
		"questions": []map[string]any{
			{
				"question_text": "Q1",
				"answers": []map[string]any{
					{"answer_text": "A", "is_correct": true},
					{"answer_text": "B", "is_correct": false},
				},
			},
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "owner")

	rec := env.do(t, nethttp.MethodPost, "/api/quizzes", validQuizBody(), cookie)
	if rec.Code != nethttp.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	doc := decodeBody[map[string]any](t, rec)
	if doc["id"] == nil || doc["id"] == "" {
		t.Fatalf("missing public id: %v", doc)
	}
	if doc["userId"] == nil || doc["userId"] == "" {
		t.Fatalf("missing owner: %v", doc)
	}
	if _, hasInternal := doc["_id"]; hasInternal {
		t.Fatalf("internal id leaked: %v", doc)
	}

	questions, ok := doc["questions"].([]any)
	if !ok || len(questions) != 1 {
		t.Fatalf("questions = %v", doc["questions"])
	}
	q := questions[0].(map[string]any)
	if q["id"] == nil || q["id"] == "" {
		t.Fatalf("question id not assigned: %v", q)
	}
}

func TestCreateQuizRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodPost, "/api/quizzes", validQuizBody(), nil)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "Authentication required." {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestCreateQuizRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "owner")

	rec := env.do(t, nethttp.MethodPost, "/api/quizzes", nil, cookie)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", rec.Code)
	}

	body := validQuizBody()
	body["title"] = "   "
	rec = env.do(t, nethttp.MethodPost, "/api/quizzes", body, cookie)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("blank title status = %d, want 400", rec.Code)
	}

	body = validQuizBody()
	body["questions"] = []map[string]any{{
		"question_text": "Q1",
		"answers": []map[string]any{
			{"answer_text": "A", "is_correct": true},
			{"answer_text": "B", "is_correct": true},
		},
	}}
	rec = env.do(t, nethttp.MethodPost, "/api/quizzes", body, cookie)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("two correct answers status = %d, want 400", rec.Code)
	}
}

func TestListQuizzesScopes(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "owner")

	for i := 0; i < 2; i++ {
		body := validQuizBody()
		body["title"] = fmt.Sprintf("Quiz %d", i)
		if rec := env.do(t, nethttp.MethodPost, "/api/quizzes", body, cookie); rec.Code != nethttp.StatusCreated {
			t.Fatalf("seeding quiz: %d %s", rec.Code, rec.Body.String())
		}
	}

	// Public scope is open to guests and excludes owned quizzes.
	rec := env.do(t, nethttp.MethodGet, "/api/quizzes", nil, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("public list status = %d", rec.Code)
	}
	if list := decodeBody[[]map[string]any](t, rec); len(list) != 0 {
		t.Fatalf("public list = %v, want empty", list)
	}

	rec = env.do(t, nethttp.MethodGet, "/api/quizzes?scope=mine", nil, cookie)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("mine list status = %d, body %s", rec.Code, rec.Body.String())
	}
	if list := decodeBody[[]map[string]any](t, rec); len(list) != 2 {
		t.Fatalf("mine list has %d quizzes, want 2", len(list))
	}

	rec = env.do(t, nethttp.MethodGet, "/api/quizzes?scope=mine", nil, nil)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("anonymous mine status = %d, want 401", rec.Code)
	}

	rec = env.do(t, nethttp.MethodGet, "/api/quizzes?scope=bogus", nil, cookie)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bogus scope status = %d, want 400", rec.Code)
	}
}

func TestGetQuizOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner")
	other := env.login(t, "other")

	created := decodeBody[map[string]any](t, env.do(t, nethttp.MethodPost, "/api/quizzes", validQuizBody(), owner))
	id := created["id"].(string)

	rec := env.do(t, nethttp.MethodGet, "/api/quizzes/"+id, nil, owner)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("owner get status = %d", rec.Code)
	}

	// Someone else's quiz is indistinguishable from a missing one.
	rec = env.do(t, nethttp.MethodGet, "/api/quizzes/"+id, nil, other)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("non-owner get status = %d, want 404", rec.Code)
	}

	rec = env.do(t, nethttp.MethodGet, "/api/quizzes/no-such-id", nil, owner)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestUpdateQuiz(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner")
	other := env.login(t, "other")

	created := decodeBody[map[string]any](t, env.do(t, nethttp.MethodPost, "/api/quizzes", validQuizBody(), owner))
	id := created["id"].(string)

	update := validQuizBody()
	update["title"] = "Cells, revised"
	rec := env.do(t, nethttp.MethodPut, "/api/quizzes/"+id, update, owner)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("owner update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if doc := decodeBody[map[string]any](t, rec); doc["title"] != "Cells, revised" {
		t.Fatalf("title = %v", doc["title"])
	}

	rec = env.do(t, nethttp.MethodPut, "/api/quizzes/"+id, update, other)
	if rec.Code != nethttp.StatusForbidden {
		t.Fatalf("non-owner update status = %d, want 403", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["error"] != "Permission denied. You do not own this quiz." {
		t.Fatalf("error = %q", body["error"])
	}

	rec = env.do(t, nethttp.MethodPut, "/api/quizzes/no-such-id", update, owner)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown id update status = %d, want 404", rec.Code)
	}
}

func TestDeleteQuiz(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner")
	other := env.login(t, "other")

	created := decodeBody[map[string]any](t, env.do(t, nethttp.MethodPost, "/api/quizzes", validQuizBody(), owner))
	id := created["id"].(string)

	rec := env.do(t, nethttp.MethodDelete, "/api/quizzes/"+id, nil, other)
	if rec.Code != nethttp.StatusForbidden {
		t.Fatalf("non-owner delete status = %d, want 403", rec.Code)
	}

	rec = env.do(t, nethttp.MethodDelete, "/api/quizzes/"+id, nil, owner)
	if rec.Code != nethttp.StatusNoContent {
		t.Fatalf("owner delete status = %d, want 204", rec.Code)
	}

	rec = env.do(t, nethttp.MethodDelete, "/api/quizzes/"+id, nil, owner)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}
}

func TestGenerateQuizGuest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodPost, "/api/quizzes/generate",
		map[string]any{"title": "Cells", "topic": "biology"}, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	doc := decodeBody[map[string]any](t, rec)
	if doc["userId"] != nil {
		t.Fatalf("userId = %v, want null", doc["userId"])
	}
	if n, _ := env.db.Collection("quizzes").Count(context.Background(), nil); n != 0 {
		t.Fatalf("guest generation persisted %d quizzes", n)
	}
}

func TestGenerateQuizAuthenticated(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "owner")

	rec := env.do(t, nethttp.MethodPost, "/api/quizzes/generate",
		map[string]any{"title": "Cells", "topic": "biology", "num_questions": 3}, cookie)
	if rec.Code != nethttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	doc := decodeBody[map[string]any](t, rec)
	if doc["userId"] == nil || doc["userId"] == "" {
		t.Fatalf("userId = %v, want owner id", doc["userId"])
	}
	if n, _ := env.db.Collection("quizzes").Count(context.Background(), nil); n != 1 {
		t.Fatalf("stored quizzes = %d, want 1", n)
	}
}

func TestGenerateQuizBadCount(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodPost, "/api/quizzes/generate",
		map[string]any{"title": "Cells", "topic": "biology", "num_questions": 21}, nil)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateQuizOracleDown(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.err = fmt.Errorf("upstream timeout")

	rec := env.do(t, nethttp.MethodPost, "/api/quizzes/generate",
		map[string]any{"title": "Cells", "topic": "biology"}, nil)
	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["error"] != "AI service error." {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.reply = "Mitochondria synthesize ATP."

	rec := env.do(t, nethttp.MethodPost, "/api/chat",
		map[string]any{"message": "explain ATP"}, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody[map[string]string](t, rec); body["reply"] != env.oracle.reply {
		t.Fatalf("reply = %q", body["reply"])
	}

	rec = env.do(t, nethttp.MethodPost, "/api/chat", map[string]any{"message": "  "}, nil)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("blank message status = %d, want 400", rec.Code)
	}
}

func TestGoogleCallbackFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodPost, "/api/auth/google/callback",
		map[string]string{"credential": "tok"}, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]any](t, rec)
	user, ok := body["user"].(map[string]any)
	if !ok || user["email"] != "u@example.com" {
		t.Fatalf("user = %v", body["user"])
	}

	var session *nethttp.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("session cookie not set")
	}

	// The cookie resolves on subsequent requests.
	rec = env.do(t, nethttp.MethodGet, "/api/auth/status", nil, session)
	status := decodeBody[map[string]any](t, rec)
	if status["isAuthenticated"] != true {
		t.Fatalf("status = %v", status)
	}
}

func TestGoogleCallbackRejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodPost, "/api/auth/google/callback", map[string]string{}, nil)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("missing credential status = %d, want 400", rec.Code)
	}

	env.verifier.err = fmt.Errorf("%w: audience mismatch", auth.ErrInvalidToken)
	rec = env.do(t, nethttp.MethodPost, "/api/auth/google/callback",
		map[string]string{"credential": "tok"}, nil)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("invalid token status = %d, want 401", rec.Code)
	}
}

func TestGoogleCallbackNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	logger := zap.NewNop().Sugar()

	h := GoogleCallbackHandler(nil, env.users, env.sessions, logger)
	req := httptest.NewRequest(nethttp.MethodPost, "/api/auth/google/callback",
		strings.NewReader(`{"credential":"tok"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAuthStatusAnonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodGet, "/api/auth/status", nil, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["isAuthenticated"] != false || body["user"] != nil {
		t.Fatalf("body = %v", body)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "owner")

	rec := env.do(t, nethttp.MethodPost, "/api/auth/logout", nil, nil)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("anonymous logout status = %d, want 401", rec.Code)
	}

	rec = env.do(t, nethttp.MethodPost, "/api/auth/logout", nil, cookie)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	var cleared *nethttp.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			cleared = c
		}
	}
	if cleared == nil || cleared.Value != "" || cleared.MaxAge != -1 {
		t.Fatalf("session cookie not cleared: %+v", cleared)
	}
}
