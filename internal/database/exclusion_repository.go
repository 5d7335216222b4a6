package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabquiz/pkg/models"
)

// ExclusionRepository stores, per session key, the item ids already shown.
// Entries expire after the ttl given on the last claim for the key.
type ExclusionRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewExclusionRepository creates a new repository instance
func NewExclusionRepository(db *sqlx.DB) *ExclusionRepository {
	return &ExclusionRepository{db: db, now: time.Now}
}

func (r *ExclusionRepository) clock() time.Time {
	return r.now().UTC().Truncate(time.Second)
}

// Get returns the unexpired ids stored under key
func (r *ExclusionRepository) Get(ctx context.Context, key string) (models.IDSet, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		r.db.Rebind("SELECT item_id FROM used_items WHERE session_key = ? AND expires_at > ?"),
		key, r.clock())
	if err != nil {
		return nil, fmt.Errorf("failed to get used items: %w", err)
	}
	return models.NewIDSet(ids...), nil
}

// Claim adds ids to the set under key in one transaction and returns the ids
// that were not present yet. Concurrent claims of the same id succeed only once.
func (r *ExclusionRepository) Claim(ctx context.Context, key string, ids []int64, ttl time.Duration) ([]int64, error) {
	now := r.clock()
	expires := now.Add(ttl)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer tx.Rollback()

	// Expired entries no longer block a claim
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("DELETE FROM used_items WHERE session_key = ? AND expires_at <= ?"), key, now); err != nil {
		return nil, fmt.Errorf("failed to drop expired used items: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO used_items (session_key, item_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_key, item_id) DO NOTHING
	`)
	claimed := make([]int64, 0, len(ids))
	for _, id := range ids {
		result, err := tx.ExecContext(ctx, insert, key, id, expires)
		if err != nil {
			return nil, fmt.Errorf("failed to claim item %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			claimed = append(claimed, id)
		}
	}

	// The whole set lives as long as its newest entry
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE used_items SET expires_at = ? WHERE session_key = ?"), expires, key); err != nil {
		return nil, fmt.Errorf("failed to refresh used items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return claimed, nil
}

// PurgeExpired deletes every expired entry and returns how many were removed
func (r *ExclusionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind("DELETE FROM used_items WHERE expires_at <= ?"), r.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to purge used items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
