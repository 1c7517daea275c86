package http

import (
	"encoding/json"

	nethttp "net/http"

	"github.com/quizmentor/quizmentor-backend/internal/ai"
	"github.com/quizmentor/quizmentor-backend/internal/auth"
)

// GenerateQuizHandler serves POST /api/quizzes/generate. Authenticated
// callers get the quiz persisted (201); guests get an ephemeral one (200).
func GenerateQuizHandler(svc *ai.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Title        string `json:"title"`
			Topic        string `json:"topic"`
			NumQuestions *int   `json:"num_questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, nethttp.StatusBadRequest, "Request body must contain JSON data.")
			return
		}
		numQuestions := 5
		if req.NumQuestions != nil {
			numQuestions = *req.NumQuestions
		}

		doc, persisted, err := svc.GenerateQuiz(r.Context(), auth.UserFromContext(r.Context()), req.Title, req.Topic, numQuestions)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		status := nethttp.StatusOK
		if persisted {
			status = nethttp.StatusCreated
		}
		writeJSON(w, status, doc)
	}
}

// ChatHandler serves POST /api/chat.
func ChatHandler(svc *ai.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Message string         `json:"message"`
			Context ai.ChatContext `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, nethttp.StatusBadRequest, "Request body must contain JSON data.")
			return
		}

		reply, err := svc.ChatReply(r.Context(), req.Message, req.Context)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]string{"reply": reply})
	}
}
