package quiz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/vocabquiz/pkg/models"
)

// DefaultSampleAttempts bounds the random anchors tried for one pick
const DefaultSampleAttempts = 40

// Sampler picks an active item that is not excluded
type Sampler interface {
	PickExcluding(ctx context.Context, rnd Rand, exclude models.IDSet) (*models.Item, error)
}

// AnchorSampler draws a random id between the pool bounds and takes the nearest
// eligible item after it, or before it when nothing follows.
//
// The pick is not uniform. An item that follows a long run of gaps or excluded
// ids is hit by every anchor in that run, so it is chosen more often than its
// neighbours. Swap in another Sampler when uniform draws matter.
type AnchorSampler struct {
	pool     ItemPool
	attempts int
}

// NewAnchorSampler creates a sampler over pool with the default attempt budget
func NewAnchorSampler(pool ItemPool) *AnchorSampler {
	return &AnchorSampler{pool: pool, attempts: DefaultSampleAttempts}
}

// PickExcluding returns ErrPoolExhausted when the pool is empty or no anchor
// led to an item with both prompt and translation set.
func (s *AnchorSampler) PickExcluding(ctx context.Context, rnd Rand, exclude models.IDSet) (*models.Item, error) {
	minID, maxID, err := s.pool.Bounds(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read pool bounds")
	}
	if minID > maxID {
		return nil, ErrPoolExhausted
	}

	for i := 0; i < s.attempts; i++ {
		anchor := minID + rnd.Int63n(maxID-minID+1)

		item, err := s.pool.FirstActiveAtOrAfter(ctx, anchor, exclude)
		if err != nil {
			return nil, errors.Wrapf(err, "scan forward from %d", anchor)
		}
		if item == nil {
			item, err = s.pool.FirstActiveBefore(ctx, anchor, exclude)
			if err != nil {
				return nil, errors.Wrapf(err, "scan backward from %d", anchor)
			}
		}
		if item != nil && item.Prompt != "" && item.Translation != "" {
			return item, nil
		}
	}
	return nil, ErrPoolExhausted
}
