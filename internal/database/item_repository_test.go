package database

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/pkg/models"
)

// compile-time check
var _ quiz.ItemPool = (*ItemRepository)(nil)

func TestItemBoundsEmpty(t *testing.T) {
	repo := NewItemRepository(setupTestDB(t))

	minID, maxID, err := repo.Bounds(context.Background())
	require.NoError(t, err)
	assert.Greater(t, minID, maxID)
}

func TestItemBoundsIgnoreDeleted(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(setupTestDB(t))
	items := seedItems(t, repo,
		models.Item{Prompt: "cat", Translation: "چت"},
		models.Item{Prompt: "dog", Translation: "سگ"},
		models.Item{Prompt: "bird", Translation: "پرنده"},
	)

	require.NoError(t, repo.SoftDelete(ctx, items[2].ID))

	minID, maxID, err := repo.Bounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, minID)
	assert.Equal(t, items[1].ID, maxID)

	gone, err := repo.ByID(ctx, items[2].ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, repo.SoftDelete(ctx, 999), ErrNotFound)
}

func TestItemScans(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(setupTestDB(t))
	items := seedItems(t, repo,
		models.Item{Prompt: "a", Translation: "1"},
		models.Item{Prompt: "b", Translation: "2"},
		models.Item{Prompt: "c", Translation: "3"},
		models.Item{Prompt: "d", Translation: "4"},
	)
	require.NoError(t, repo.SoftDelete(ctx, items[1].ID))

	next, err := repo.FirstActiveAtOrAfter(ctx, items[1].ID, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, items[2].ID, next.ID)

	next, err = repo.FirstActiveAtOrAfter(ctx, items[1].ID, models.NewIDSet(items[2].ID))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, items[3].ID, next.ID)

	none, err := repo.FirstActiveAtOrAfter(ctx, items[3].ID+1, nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	prev, err := repo.FirstActiveBefore(ctx, items[3].ID, models.NewIDSet(items[2].ID))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, items[0].ID, prev.ID)
	assert.Equal(t, "a", prev.Prompt)
	assert.True(t, prev.Active)
}

func TestItemsByCategory(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewItemRepository(db)
	animals, err := NewCategoryRepository(db).GetOrCreate(ctx, "animals")
	require.NoError(t, err)

	items := seedItems(t, repo,
		models.Item{Prompt: "cat", Translation: "x", CategoryID: &animals},
		models.Item{Prompt: "dog", Translation: "y", CategoryID: &animals},
		models.Item{Prompt: "cow", Translation: "z", CategoryID: &animals},
		models.Item{Prompt: "red", Translation: "w"},
	)

	got, err := repo.ByCategory(ctx, animals, models.NewIDSet(items[0].ID), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[1].ID, got[0].ID)
	require.NotNil(t, got[0].CategoryID)
	assert.Equal(t, animals, *got[0].CategoryID)

	got, err = repo.ByCategory(ctx, animals, nil, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestItemFindByPromptAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewItemRepository(db)
	colors, err := NewCategoryRepository(db).GetOrCreate(ctx, "colors")
	require.NoError(t, err)

	seedItems(t, repo,
		models.Item{Prompt: "red", Translation: "قرمز", CategoryID: &colors},
		models.Item{Prompt: "red", Translation: "سرخ"},
	)

	found, err := repo.FindByPrompt(ctx, "red", &colors)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "قرمز", found.Translation)

	found, err = repo.FindByPrompt(ctx, "red", nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "سرخ", found.Translation)

	found.Translation = "سرخ رنگ"
	require.NoError(t, repo.Update(ctx, found))
	reloaded, err := repo.ByID(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "سرخ رنگ", reloaded.Translation)

	missing, err := repo.FindByPrompt(ctx, "blue", nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGeneratorOverItemRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewItemRepository(db)
	animals, err := NewCategoryRepository(db).GetOrCreate(ctx, "animals")
	require.NoError(t, err)

	items := seedItems(t, repo,
		models.Item{Prompt: "cat", Translation: "چت", CategoryID: &animals},
		models.Item{Prompt: "dog", Translation: "سگ", CategoryID: &animals},
		models.Item{Prompt: "bird", Translation: "پرنده", CategoryID: &animals},
	)

	g := quiz.NewGenerator(repo)
	q, err := g.BuildQuestion(ctx, rand.New(rand.NewSource(1)), items[0], nil)
	require.NoError(t, err)

	var ids []int64
	for _, o := range q.Options {
		ids = append(ids, o.ItemID)
	}
	assert.Equal(t, items[0].ID, q.CorrectItemID)
	assert.ElementsMatch(t, []int64{items[0].ID, items[1].ID, items[2].ID}, ids)
}
