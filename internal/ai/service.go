package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizmentor/quizmentor-backend/internal/auth"
	"github.com/quizmentor/quizmentor-backend/internal/quiz"
)

const (
	minQuestions = 1
	maxQuestions = 20
)

// Service builds prompts, invokes the completion oracle and normalizes its
// output into quiz documents or chat replies. llm may be nil when no API key
// is configured; every call then fails with ErrService.
type Service struct {
	llm     Generator
	quizzes *quiz.Service
	log     *zap.SugaredLogger
}

func NewService(llm Generator, quizzes *quiz.Service, log *zap.SugaredLogger) *Service {
	return &Service{llm: llm, quizzes: quizzes, log: log}
}

// GenerateQuiz asks the oracle for numQuestions multiple-choice questions on
// topic. Authenticated callers get the quiz persisted under their ownership
// (persisted=true); anonymous callers get the ephemeral document back with a
// null owner.
func (s *Service) GenerateQuiz(ctx context.Context, caller *auth.User, title, topic string, numQuestions int) (doc map[string]any, persisted bool, err error) {
	if s.llm == nil {
		return nil, false, fmt.Errorf("%w: not configured", ErrService)
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(topic) == "" {
		return nil, false, fmt.Errorf("%w: missing 'title' or 'topic'", quiz.ErrValidation)
	}
	if numQuestions < minQuestions || numQuestions > maxQuestions {
		return nil, false, fmt.Errorf("%w: invalid 'num_questions' (%d-%d)", quiz.ErrValidation, minQuestions, maxQuestions)
	}

	raw, err := s.llm.Complete(ctx, quizPrompt(topic, numQuestions), true)
	if err != nil {
		s.log.Errorw("quiz generation call failed", "topic", topic, "err", err)
		return nil, false, fmt.Errorf("%w: %v", ErrService, err)
	}

	questions, droppedCount, err := parseGeneratedQuestions(raw)
	if err != nil {
		s.log.Errorw("invalid generated quiz payload", "topic", topic, "err", err, "raw", truncate(raw, 1000))
		return nil, false, fmt.Errorf("%w: invalid response format", ErrService)
	}
	if droppedCount > 0 {
		s.log.Warnw("dropped malformed generated questions", "topic", topic, "dropped", droppedCount)
	}
	if len(questions) == 0 {
		s.log.Errorw("no valid questions in generated payload", "topic", topic, "raw", truncate(raw, 1000))
		return nil, false, fmt.Errorf("%w: generator returned no valid questions", quiz.ErrValidation)
	}

	q := quiz.Quiz{
		PublicID:  uuid.NewString(),
		Title:     title,
		Topic:     topic,
		Questions: quiz.QuestionsWithIDs(questions),
	}

	if caller != nil {
		doc, err := s.quizzes.SaveGenerated(ctx, caller, q)
		if err != nil {
			return nil, false, err
		}
		return doc, true, nil
	}

	// Guest: nothing is persisted; owner is explicitly null.
	s.log.Infow("generated ephemeral quiz for guest", "quiz", q.PublicID)
	return map[string]any{
		"id":        q.PublicID,
		"title":     q.Title,
		"topic":     q.Topic,
		"userId":    nil,
		"questions": q.Questions,
	}, false, nil
}

// ChatReply sends the user's message, wrapped in the assistant persona and
// any quiz context, to the oracle in free-text mode.
func (s *Service) ChatReply(ctx context.Context, message string, chatCtx ChatContext) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: not configured", ErrService)
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: missing 'message'", quiz.ErrValidation)
	}

	reply, err := s.llm.Complete(ctx, chatPrompt(message, chatCtx), false)
	if err != nil {
		s.log.Errorw("chat call failed", "err", err)
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if strings.TrimSpace(reply) == "" {
		s.log.Errorw("chat call returned empty reply")
		return "", fmt.Errorf("%w: no reply generated", ErrService)
	}
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
