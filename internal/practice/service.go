package practice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/spaced_repetition"
	"github.com/example/vocabquiz/pkg/models"
)

// DefaultUsedTTL is how long a game remembers the items it already showed
const DefaultUsedTTL = 6 * time.Hour

// CardStore persists learner cards
type CardStore interface {
	Get(ctx context.Context, learnerID uuid.UUID, itemID int64) (*models.LearnerCard, error)
	Save(ctx context.Context, card *models.LearnerCard) error
	ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]models.LearnerCard, error)
	ItemIDs(ctx context.Context, learnerID uuid.UUID) ([]int64, error)
}

// ExclusionStore keeps the set of item ids a session already used.
//
// Claim must be atomic: when two callers claim the same id under the same
// key, exactly one of them gets it back.
type ExclusionStore interface {
	Get(ctx context.Context, key string) (models.IDSet, error)
	Claim(ctx context.Context, key string, ids []int64, ttl time.Duration) ([]int64, error)
}

// SessionKey returns the exclusion set key of a learner's game
func SessionKey(learnerID uuid.UUID, gameID string) string {
	return fmt.Sprintf("game_used_items:%s:%s", learnerID, gameID)
}

// Service ties question generation to learner cards and game sessions
type Service struct {
	generator *quiz.Generator
	cards     CardStore
	used      ExclusionStore
	leitner   *spaced_repetition.Leitner
	usedTTL   time.Duration
	logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithUsedTTL sets how long game exclusion sets live
func WithUsedTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.usedTTL = ttl
		}
	}
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new practice service
func NewService(generator *quiz.Generator, cards CardStore, used ExclusionStore, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		cards:     cards,
		used:      used,
		leitner:   spaced_repetition.NewLeitner(),
		usedTTL:   DefaultUsedTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuizQuestions builds up to count questions over the items the learner has cards for
func (s *Service) QuizQuestions(ctx context.Context, rnd quiz.Rand, learnerID uuid.UUID, count int) ([]models.Question, error) {
	if count < 1 {
		return nil, errors.Wrapf(quiz.ErrInvalidCount, "count %d", count)
	}

	ids, err := s.cards.ItemIDs(ctx, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "load learner items")
	}

	questions, err := s.generator.BuildForLearnerCards(ctx, rnd, ids, count)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("built quiz", "learner_id", learnerID, "requested", count, "built", len(questions))
	return questions, nil
}

// GameQuestions builds the next batch of an open pool game. Items shown
// earlier in the same game are not repeated while its exclusion set lives.
//
// Every returned question was claimed for this game; a question whose item a
// concurrent request claimed first is dropped, so the batch can come back short.
func (s *Service) GameQuestions(ctx context.Context, rnd quiz.Rand, learnerID uuid.UUID, gameID string, count int) ([]models.Question, error) {
	if count < 1 {
		return nil, errors.Wrapf(quiz.ErrInvalidCount, "count %d", count)
	}

	key := SessionKey(learnerID, gameID)
	used, err := s.used.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "load used items")
	}

	questions, err := s.generator.BuildFromPool(ctx, rnd, count, used.Clone())
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.CorrectItemID)
	}
	claimed, err := s.used.Claim(ctx, key, ids, s.usedTTL)
	if err != nil {
		return nil, errors.Wrap(err, "claim used items")
	}

	won := models.NewIDSet(claimed...)
	kept := questions[:0]
	for _, q := range questions {
		if won.Has(q.CorrectItemID) {
			kept = append(kept, q)
		}
	}
	if dropped := len(questions) - len(kept); dropped > 0 {
		s.logger.Debug("dropped questions claimed by another request", "key", key, "dropped", dropped)
	}
	return kept, nil
}

// RecordAnswer moves the learner's card for itemID through the review boxes
// and stamps today as its last check date
func (s *Service) RecordAnswer(ctx context.Context, learnerID uuid.UUID, itemID int64, correct bool, today time.Time) (*models.LearnerCard, error) {
	card, err := s.cards.Get(ctx, learnerID, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "load card for item %d", itemID)
	}

	before := card.Stage
	s.leitner.Process(card, correct, today)
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, errors.Wrapf(err, "save card for item %d", itemID)
	}

	s.logger.Info("answer recorded",
		"learner_id", learnerID, "item_id", itemID, "correct", correct,
		"from", before, "to", card.Stage)
	return card, nil
}

// DueCards returns the learner's cards due on today, most urgent first.
// A limit of zero or less returns all of them.
func (s *Service) DueCards(ctx context.Context, learnerID uuid.UUID, today time.Time, limit int) ([]models.LearnerCard, error) {
	cards, err := s.cards.ListForLearner(ctx, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "load learner cards")
	}
	return s.leitner.GetNextCards(cards, today, limit), nil
}
