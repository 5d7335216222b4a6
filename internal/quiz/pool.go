package quiz

import (
	"context"

	"github.com/example/vocabquiz/pkg/models"
)

// ItemPool is a read-only view over the active vocabulary items.
//
// Lookups that find nothing return a nil item and a nil error. Identifiers
// are sparse: soft-deleted items leave gaps between Bounds.
type ItemPool interface {
	// Bounds returns the smallest and largest active identifiers.
	// An empty pool reports minID > maxID.
	Bounds(ctx context.Context) (minID, maxID int64, err error)
	// FirstActiveAtOrAfter returns the active item with the smallest id >= id that is not excluded.
	FirstActiveAtOrAfter(ctx context.Context, id int64, exclude models.IDSet) (*models.Item, error)
	// FirstActiveBefore returns the active item with the largest id < id that is not excluded.
	FirstActiveBefore(ctx context.Context, id int64, exclude models.IDSet) (*models.Item, error)
	// ByCategory returns up to limit active items of the category that are not excluded.
	ByCategory(ctx context.Context, categoryID int64, exclude models.IDSet, limit int) ([]models.Item, error)
	// ByID returns the active item with the given id.
	ByID(ctx context.Context, id int64) (*models.Item, error)
}

// Rand is the randomness a caller hands to every build operation.
// *math/rand.Rand satisfies it; it must not be shared between goroutines.
type Rand interface {
	Int63n(n int64) int64
	Shuffle(n int, swap func(i, j int))
}
