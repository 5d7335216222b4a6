package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabquiz/pkg/models"
)

const itemColumns = "id, prompt, translation, category_id, active"

// ItemRepository handles database operations for vocabulary items.
// Read methods only ever see active items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Bounds returns the smallest and largest active item ids; (1, 0) when there are none
func (r *ItemRepository) Bounds(ctx context.Context) (int64, int64, error) {
	var bounds struct {
		Min sql.NullInt64 `db:"min_id"`
		Max sql.NullInt64 `db:"max_id"`
	}
	err := r.db.GetContext(ctx, &bounds, "SELECT MIN(id) AS min_id, MAX(id) AS max_id FROM items WHERE active")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get item bounds: %w", err)
	}
	if !bounds.Min.Valid || !bounds.Max.Valid {
		return 1, 0, nil
	}
	return bounds.Min.Int64, bounds.Max.Int64, nil
}

// FirstActiveAtOrAfter returns the first active item with id >= id that is not excluded
func (r *ItemRepository) FirstActiveAtOrAfter(ctx context.Context, id int64, exclude models.IDSet) (*models.Item, error) {
	return r.first(ctx, "id >= ?", "id ASC", id, exclude)
}

// FirstActiveBefore returns the last active item with id < id that is not excluded
func (r *ItemRepository) FirstActiveBefore(ctx context.Context, id int64, exclude models.IDSet) (*models.Item, error) {
	return r.first(ctx, "id < ?", "id DESC", id, exclude)
}

func (r *ItemRepository) first(ctx context.Context, cond, order string, id int64, exclude models.IDSet) (*models.Item, error) {
	query, args, err := withExclusion(
		"SELECT "+itemColumns+" FROM items WHERE active AND "+cond, []interface{}{id},
		exclude, "ORDER BY "+order+" LIMIT 1")
	if err != nil {
		return nil, err
	}

	var item models.Item
	err = r.db.GetContext(ctx, &item, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan items from %d: %w", id, err)
	}
	return &item, nil
}

// ByCategory returns up to limit active items of a category that are not excluded
func (r *ItemRepository) ByCategory(ctx context.Context, categoryID int64, exclude models.IDSet, limit int) ([]models.Item, error) {
	query, args, err := withExclusion(
		"SELECT "+itemColumns+" FROM items WHERE active AND category_id = ?", []interface{}{categoryID},
		exclude, "ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}

	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get items by category: %w", err)
	}
	return items, nil
}

// ByID returns an active item by ID, or nil when it does not exist or was deleted
func (r *ItemRepository) ByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := r.db.GetContext(ctx, &item, r.db.Rebind("SELECT "+itemColumns+" FROM items WHERE active AND id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}
	return &item, nil
}

// FindByPrompt looks up an active item by its prompt within a category (nil category matches uncategorised items)
func (r *ItemRepository) FindByPrompt(ctx context.Context, prompt string, categoryID *int64) (*models.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE active AND prompt = ? AND category_id IS NULL"
	args := []interface{}{prompt}
	if categoryID != nil {
		query = "SELECT " + itemColumns + " FROM items WHERE active AND prompt = ? AND category_id = ?"
		args = append(args, *categoryID)
	}

	var item models.Item
	err := r.db.GetContext(ctx, &item, r.db.Rebind(query+" ORDER BY id LIMIT 1"), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by prompt: %w", err)
	}
	return &item, nil
}

// Create inserts a new active item
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	item.Active = true

	// Разные запросы для разных СУБД
	if r.db.DriverName() == DriverPostgres {
		query := `
			INSERT INTO items (prompt, translation, category_id, active)
			VALUES ($1, $2, $3, TRUE)
			RETURNING id
		`
		if err := r.db.QueryRowContext(ctx, query, item.Prompt, item.Translation, item.CategoryID).Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO items (prompt, translation, category_id, active) VALUES (?, ?, ?, TRUE)",
		item.Prompt, item.Translation, item.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	item.ID = id
	return nil
}

// Update modifies the texts and category of an existing item
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE items SET
			prompt = ?,
			translation = ?,
			category_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), item.Prompt, item.Translation, item.CategoryID, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectRow(result)
}

// SoftDelete deactivates an item; its id stays reserved
func (r *ItemRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE items SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"), false, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectRow(result)
}

// withExclusion joins head and tail around an optional NOT IN filter on id.
// The returned query still uses ? placeholders.
func withExclusion(head string, headArgs []interface{}, exclude models.IDSet, tail string, tailArgs ...interface{}) (string, []interface{}, error) {
	if len(exclude) == 0 {
		return head + " " + tail, append(headArgs, tailArgs...), nil
	}
	args := append(append(headArgs, exclude.Slice()), tailArgs...)
	expanded, inArgs, err := sqlx.In(head+" AND id NOT IN (?) "+tail, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build exclusion filter: %w", err)
	}
	return expanded, inArgs, nil
}

func expectRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
