package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabquiz/pkg/models"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new repository instance
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetAll returns all categories ordered by name
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, "SELECT id, name FROM categories ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByName retrieves a category by its name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, r.db.Rebind("SELECT id, name FROM categories WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

// GetOrCreate returns the id of the named category, creating it when missing
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("category name is empty")
	}

	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING"), name)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}

	category, err := r.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}
