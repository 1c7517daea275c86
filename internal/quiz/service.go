package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/quizmentor/quizmentor-backend/internal/auth"
	"github.com/quizmentor/quizmentor-backend/internal/store"
)

const (
	ScopePublic = "public"
	ScopeMine   = "mine"
)

// Service implements the ownership-scoped CRUD contract over the quizzes
// collection. Every read re-fetches the stored document and normalizes it, so
// nothing store-internal ever crosses the HTTP boundary.
type Service struct {
	quizzes store.Collection
	log     *zap.SugaredLogger
}

func NewService(quizzes store.Collection, log *zap.SugaredLogger) *Service {
	return &Service{quizzes: quizzes, log: log}
}

// List returns quizzes for the given scope. ScopePublic filters unowned
// quizzes and is open to anonymous callers; ScopeMine needs a caller and
// filters by ownership. Result order is whatever the store yields.
func (s *Service) List(ctx context.Context, caller *auth.User, scope string) ([]map[string]any, error) {
	var filter bson.M
	switch scope {
	case ScopePublic:
		filter = bson.M{"userId": nil}
	case ScopeMine:
		if caller == nil {
			return nil, ErrUnauthenticated
		}
		filter = bson.M{"userId": caller.ID}
	default:
		return nil, fmt.Errorf("%w: invalid scope %q, use 'public' or 'mine'", ErrValidation, scope)
	}

	docs, err := s.quizzes.Find(ctx, filter)
	if err != nil {
		s.log.Errorw("listing quizzes", "scope", scope, "err", err)
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, store.Normalize(doc))
	}
	return out, nil
}

// Get fetches a single quiz by public id, scoped to the caller. A quiz owned
// by someone else is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, caller *auth.User, publicID string) (map[string]any, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	return s.fetch(ctx, bson.M{"id": publicID, "userId": caller.ID})
}

// Create validates and stores a new quiz owned by the caller, backfilling
// public ids where the request omitted them.
func (s *Service) Create(ctx context.Context, caller *auth.User, title, topic string, questions []Question) (map[string]any, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []Question{}
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}

	owner := caller.ID
	q := WithIDs(Quiz{
		Title:     title,
		Topic:     topic,
		OwnerID:   &owner,
		Questions: questions,
	})
	if _, err := s.quizzes.InsertOne(ctx, q); err != nil {
		s.log.Errorw("inserting quiz", "quiz", q.PublicID, "err", err)
		return nil, fmt.Errorf("inserting quiz: %w", err)
	}
	s.log.Infow("quiz created", "quiz", q.PublicID)
	return s.fetch(ctx, bson.M{"id": q.PublicID})
}

// Replace performs a wholesale replacement of the caller's quiz, preserving
// its public id and ownership. When nothing matched, a secondary existence
// check separates "not yours" from "does not exist".
func (s *Service) Replace(ctx context.Context, caller *auth.User, publicID, title, topic string, questions []Question) (map[string]any, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if questions == nil {
		return nil, fmt.Errorf("%w: missing 'questions' array", ErrValidation)
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}

	owner := caller.ID
	q := WithIDs(Quiz{
		PublicID:  publicID,
		Title:     title,
		Topic:     topic,
		OwnerID:   &owner,
		Questions: questions,
	})
	filter := bson.M{"id": publicID, "userId": caller.ID}
	matched, err := s.quizzes.ReplaceOne(ctx, filter, q)
	if err != nil {
		s.log.Errorw("replacing quiz", "quiz", publicID, "err", err)
		return nil, fmt.Errorf("replacing quiz: %w", err)
	}
	if matched == 0 {
		return nil, s.missOrForbidden(ctx, publicID)
	}
	s.log.Infow("quiz updated", "quiz", publicID)
	return s.fetch(ctx, filter)
}

// Delete removes the caller's quiz; exactly one document or an error.
func (s *Service) Delete(ctx context.Context, caller *auth.User, publicID string) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	deleted, err := s.quizzes.DeleteOne(ctx, bson.M{"id": publicID, "userId": caller.ID})
	if err != nil {
		s.log.Errorw("deleting quiz", "quiz", publicID, "err", err)
		return fmt.Errorf("deleting quiz: %w", err)
	}
	if deleted == 0 {
		return s.missOrForbidden(ctx, publicID)
	}
	s.log.Infow("quiz deleted", "quiz", publicID)
	return nil
}

// SaveGenerated persists an AI-generated quiz for its owner and returns the
// normalized stored document. Shape validation already happened during
// generation, so the manual-create invariants are not re-applied here.
func (s *Service) SaveGenerated(ctx context.Context, caller *auth.User, q Quiz) (map[string]any, error) {
	owner := caller.ID
	q.OwnerID = &owner
	if _, err := s.quizzes.InsertOne(ctx, q); err != nil {
		s.log.Errorw("saving generated quiz", "quiz", q.PublicID, "err", err)
		return nil, fmt.Errorf("saving generated quiz: %w", err)
	}
	s.log.Infow("generated quiz saved", "quiz", q.PublicID)
	return s.fetch(ctx, bson.M{"id": q.PublicID})
}

func (s *Service) fetch(ctx context.Context, filter bson.M) (map[string]any, error) {
	var doc bson.M
	if err := s.quizzes.FindOne(ctx, filter, &doc); err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	return store.Normalize(doc), nil
}

func (s *Service) missOrForbidden(ctx context.Context, publicID string) error {
	n, err := s.quizzes.Count(ctx, bson.M{"id": publicID})
	if err != nil {
		return fmt.Errorf("checking quiz existence: %w", err)
	}
	if n > 0 {
		return ErrForbidden
	}
	return ErrNotFound
}
