package config

import (
	"os"
)

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "production"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	StoreDriver string // mongo|memory
	MongoURI    string
	MongoDB     string

	GoogleClientID string

	GeminiAPIKey string
	GeminiModel  string

	SessionSecret  string
	FrontendOrigin string
}

func FromEnv() Config {
	mode := ModeDev
	if Mode(os.Getenv("APP_ENV")) == ModeProd {
		mode = ModeProd
	}
	return Config{
		Mode:           mode,
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		StoreDriver:    envOr("STORE_DRIVER", "mongo"),
		MongoURI:       envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        envOr("MONGO_DB", "quizmentor"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GeminiAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		SessionSecret:  envOr("SESSION_SECRET", "supersecret-dev-key"),
		FrontendOrigin: envOr("FRONTEND_ORIGIN", "http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
