package http

import (
	"encoding/json"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizmentor/quizmentor-backend/internal/auth"
	"github.com/quizmentor/quizmentor-backend/internal/quiz"
)

type quizRequest struct {
	Title     string          `json:"title"`
	Topic     string          `json:"topic,omitempty"`
	Questions []quiz.Question `json:"questions"`
}

// ListQuizzesHandler serves GET /api/quizzes?scope=public|mine. The public
// scope is open to anonymous callers.
func ListQuizzesHandler(svc *quiz.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		scope := r.URL.Query().Get("scope")
		if scope == "" {
			scope = quiz.ScopePublic
		}
		quizzes, err := svc.List(r.Context(), auth.UserFromContext(r.Context()), scope)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, quizzes)
	}
}

func GetQuizHandler(svc *quiz.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		doc, err := svc.Get(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "quizID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, doc)
	}
}

func CreateQuizHandler(svc *quiz.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req quizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, nethttp.StatusBadRequest, "Request body must contain JSON data.")
			return
		}
		doc, err := svc.Create(r.Context(), auth.UserFromContext(r.Context()), req.Title, req.Topic, req.Questions)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, doc)
	}
}

func UpdateQuizHandler(svc *quiz.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req quizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, nethttp.StatusBadRequest, "Request body must contain JSON data.")
			return
		}
		doc, err := svc.Replace(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "quizID"), req.Title, req.Topic, req.Questions)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, doc)
	}
}

func DeleteQuizHandler(svc *quiz.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.Delete(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "quizID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
