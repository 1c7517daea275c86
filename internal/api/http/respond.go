package http

import (
	"encoding/json"
	"errors"
	"strings"

	nethttp "net/http"

	"github.com/quizmentor/quizmentor-backend/internal/ai"
	"github.com/quizmentor/quizmentor-backend/internal/quiz"
)

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w nethttp.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError is the single boundary mapper from the service error
// taxonomy to HTTP statuses. Anything unrecognized is a 500 with a generic
// message; internals never leak to the client.
func writeServiceError(w nethttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		writeError(w, nethttp.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, quiz.ErrUnauthenticated):
		writeError(w, nethttp.StatusUnauthorized, "Authentication required.")
	case errors.Is(err, quiz.ErrForbidden):
		writeError(w, nethttp.StatusForbidden, "Permission denied. You do not own this quiz.")
	case errors.Is(err, quiz.ErrNotFound):
		writeError(w, nethttp.StatusNotFound, "Quiz not found.")
	case errors.Is(err, ai.ErrService):
		writeError(w, nethttp.StatusServiceUnavailable, "AI service error.")
	default:
		writeError(w, nethttp.StatusInternalServerError, "Internal server error.")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
