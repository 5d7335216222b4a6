package practice

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/pkg/models"
)

type fixture struct {
	items []models.Item
	cards *database.CardRepository
	svc   *Service
}

func newFixture(t *testing.T, n int, used ExclusionStore) *fixture {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	itemRepo := database.NewItemRepository(db)
	f := &fixture{cards: database.NewCardRepository(db)}
	for i := 1; i <= n; i++ {
		item := models.Item{Prompt: fmt.Sprintf("word%d", i), Translation: fmt.Sprintf("t%d", i)}
		require.NoError(t, itemRepo.Create(context.Background(), &item))
		f.items = append(f.items, item)
	}
	f.svc = NewService(quiz.NewGenerator(itemRepo), f.cards, used)
	return f
}

func (f *fixture) enroll(t *testing.T, learner uuid.UUID, items ...models.Item) {
	t.Helper()
	for _, it := range items {
		_, err := f.cards.Enroll(context.Background(), learner, it.ID)
		require.NoError(t, err)
	}
}

func correctIDs(questions []models.Question) []int64 {
	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.CorrectItemID)
	}
	return ids
}

func TestSessionKey(t *testing.T) {
	learner := uuid.MustParse("7b0f7c52-54a4-4b55-8f39-6b6d0f1e9a10")
	assert.Equal(t, "game_used_items:7b0f7c52-54a4-4b55-8f39-6b6d0f1e9a10:g1", SessionKey(learner, "g1"))
}

func TestInvalidCount(t *testing.T) {
	f := newFixture(t, 3, NewMemoryExclusionStore())
	rnd := rand.New(rand.NewSource(1))

	for _, count := range []int{0, -2} {
		_, err := f.svc.QuizQuestions(context.Background(), rnd, uuid.New(), count)
		assert.True(t, errors.Is(err, quiz.ErrInvalidCount))

		_, err = f.svc.GameQuestions(context.Background(), rnd, uuid.New(), "g", count)
		assert.True(t, errors.Is(err, quiz.ErrInvalidCount))
	}
}

func TestQuizQuestionsUseLearnerCards(t *testing.T) {
	f := newFixture(t, 6, NewMemoryExclusionStore())
	learner := uuid.New()
	f.enroll(t, learner, f.items[0], f.items[2], f.items[4])

	questions, err := f.svc.QuizQuestions(context.Background(), rand.New(rand.NewSource(3)), learner, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{f.items[0].ID, f.items[2].ID, f.items[4].ID}, correctIDs(questions))
	for _, q := range questions {
		assert.Len(t, q.Options, quiz.OptionsPerQuestion)
	}

	questions, err = f.svc.QuizQuestions(context.Background(), rand.New(rand.NewSource(3)), learner, 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	none, err := f.svc.QuizQuestions(context.Background(), rand.New(rand.NewSource(3)), uuid.New(), 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGameQuestionsDoNotRepeat(t *testing.T) {
	f := newFixture(t, 10, NewMemoryExclusionStore())
	learner := uuid.New()
	rnd := rand.New(rand.NewSource(11))

	seen := models.IDSet{}
	for round := 0; round < 4; round++ {
		questions, err := f.svc.GameQuestions(context.Background(), rnd, learner, "g1", 3)
		require.NoError(t, err)
		for _, id := range correctIDs(questions) {
			assert.False(t, seen.Has(id), "item %d repeated", id)
			seen.Add(id)
		}
	}
	assert.Len(t, seen, 10)

	rest, err := f.svc.GameQuestions(context.Background(), rnd, learner, "g1", 3)
	require.NoError(t, err)
	assert.Empty(t, rest)

	// another game starts fresh
	other, err := f.svc.GameQuestions(context.Background(), rnd, learner, "g2", 3)
	require.NoError(t, err)
	assert.Len(t, other, 3)
}

// racingStore pretends a concurrent request claimed the first id of every claim
type racingStore struct {
	*MemoryExclusionStore
}

func (r racingStore) Claim(ctx context.Context, key string, ids []int64, ttl time.Duration) ([]int64, error) {
	if len(ids) > 0 {
		if _, err := r.MemoryExclusionStore.Claim(ctx, key, ids[:1], ttl); err != nil {
			return nil, err
		}
	}
	return r.MemoryExclusionStore.Claim(ctx, key, ids, ttl)
}

func TestGameQuestionsDropLostClaims(t *testing.T) {
	store := racingStore{NewMemoryExclusionStore()}
	f := newFixture(t, 10, store)
	learner := uuid.New()

	questions, err := f.svc.GameQuestions(context.Background(), rand.New(rand.NewSource(5)), learner, "g1", 3)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	used, err := store.Get(context.Background(), SessionKey(learner, "g1"))
	require.NoError(t, err)
	assert.Len(t, used, 3)
	for _, id := range correctIDs(questions) {
		assert.True(t, used.Has(id))
	}
}

type failingStore struct {
	*MemoryExclusionStore
}

func (failingStore) Claim(context.Context, string, []int64, time.Duration) ([]int64, error) {
	return nil, errors.New("store unavailable")
}

func TestGameQuestionsClaimError(t *testing.T) {
	f := newFixture(t, 4, failingStore{NewMemoryExclusionStore()})

	_, err := f.svc.GameQuestions(context.Background(), rand.New(rand.NewSource(1)), uuid.New(), "g1", 2)
	assert.ErrorContains(t, err, "store unavailable")
}

func TestRecordAnswer(t *testing.T) {
	f := newFixture(t, 4, NewMemoryExclusionStore())
	learner := uuid.New()
	f.enroll(t, learner, f.items[0])
	today := time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

	card, err := f.svc.RecordAnswer(context.Background(), learner, f.items[0].ID, true, today)
	require.NoError(t, err)
	assert.Equal(t, models.StageDay1, card.Stage)
	require.NotNil(t, card.LastCheckDate)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), *card.LastCheckDate)

	card, err = f.svc.RecordAnswer(context.Background(), learner, f.items[0].ID, true, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, models.StageDays3, card.Stage)

	card, err = f.svc.RecordAnswer(context.Background(), learner, f.items[0].ID, false, today.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, card.Stage)

	stored, err := f.cards.Get(context.Background(), learner, f.items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, stored.Stage)

	_, err = f.svc.RecordAnswer(context.Background(), learner, f.items[3].ID, true, today)
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestDueCards(t *testing.T) {
	f := newFixture(t, 3, NewMemoryExclusionStore())
	learner := uuid.New()
	f.enroll(t, learner, f.items[0], f.items[1])
	today := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.RecordAnswer(context.Background(), learner, f.items[0].ID, true, today)
	require.NoError(t, err)

	due, err := f.svc.DueCards(context.Background(), learner, today, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, f.items[1].ID, due[0].ItemID)

	due, err = f.svc.DueCards(context.Background(), learner, today.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, f.items[1].ID, due[0].ItemID)
	assert.Equal(t, f.items[0].ID, due[1].ItemID)

	due, err = f.svc.DueCards(context.Background(), learner, today.AddDate(0, 0, 1), 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
