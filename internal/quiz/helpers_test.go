package quiz

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabquiz/pkg/models"
)

// memPool is an ItemPool over a slice kept sorted by id
type memPool struct {
	items       []models.Item
	boundsCalls int
}

func newMemPool(items ...models.Item) *memPool {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &memPool{items: items}
}

func (p *memPool) Bounds(context.Context) (int64, int64, error) {
	p.boundsCalls++
	minID, maxID := int64(1), int64(0)
	first := true
	for _, it := range p.items {
		if !it.Active {
			continue
		}
		if first {
			minID = it.ID
			first = false
		}
		maxID = it.ID
	}
	return minID, maxID, nil
}

func (p *memPool) FirstActiveAtOrAfter(_ context.Context, id int64, exclude models.IDSet) (*models.Item, error) {
	for _, it := range p.items {
		if it.Active && it.ID >= id && !exclude.Has(it.ID) {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

func (p *memPool) FirstActiveBefore(_ context.Context, id int64, exclude models.IDSet) (*models.Item, error) {
	for i := len(p.items) - 1; i >= 0; i-- {
		it := p.items[i]
		if it.Active && it.ID < id && !exclude.Has(it.ID) {
			return &it, nil
		}
	}
	return nil, nil
}

func (p *memPool) ByCategory(_ context.Context, categoryID int64, exclude models.IDSet, limit int) ([]models.Item, error) {
	var out []models.Item
	for _, it := range p.items {
		if len(out) >= limit {
			break
		}
		if it.Active && it.CategoryID != nil && *it.CategoryID == categoryID && !exclude.Has(it.ID) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (p *memPool) ByID(_ context.Context, id int64) (*models.Item, error) {
	for _, it := range p.items {
		if it.ID == id && it.Active {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

// word builds an active item; category 0 means none
func word(id int64, prompt, translation string, category int64) models.Item {
	it := models.Item{ID: id, Prompt: prompt, Translation: translation, Active: true}
	if category != 0 {
		c := category
		it.CategoryID = &c
	}
	return it
}

// stubRand replays anchor offsets and never reorders anything
type stubRand struct {
	offsets []int64
	calls   int
}

func (r *stubRand) Int63n(n int64) int64 {
	v := r.offsets[r.calls%len(r.offsets)]
	r.calls++
	return v % n
}

func (r *stubRand) Shuffle(int, func(i, j int)) {}

func assertValidQuestion(t *testing.T, q models.Question) {
	t.Helper()
	require.GreaterOrEqual(t, len(q.Options), 1)
	require.LessOrEqual(t, len(q.Options), OptionsPerQuestion)

	correct := 0
	texts := map[string]bool{}
	ids := map[int64]bool{}
	for _, o := range q.Options {
		if o.ItemID == q.CorrectItemID {
			correct++
		}
		text := strings.TrimSpace(o.Text)
		assert.NotEmpty(t, text)
		assert.False(t, texts[text], "duplicate option text %q", text)
		assert.False(t, ids[o.ItemID], "duplicate option id %d", o.ItemID)
		texts[text] = true
		ids[o.ItemID] = true
	}
	assert.Equal(t, 1, correct, "exactly one correct option")
}
