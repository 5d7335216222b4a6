package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/vocabquiz/pkg/models"
)

// LearnerRepository handles database operations for learners
type LearnerRepository struct {
	db *sqlx.DB
}

// NewLearnerRepository creates a new repository instance
func NewLearnerRepository(db *sqlx.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// Upsert creates a learner or replaces its notification settings
func (r *LearnerRepository) Upsert(ctx context.Context, learner *models.Learner) error {
	if learner.NotificationHour < 0 || learner.NotificationHour > 23 {
		return fmt.Errorf("notification hour %d out of range", learner.NotificationHour)
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO learners (id, chat_id, notification_enabled, notification_hour)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			notification_enabled = EXCLUDED.notification_enabled,
			notification_hour = EXCLUDED.notification_hour
	`), learner.ID, learner.ChatID, learner.NotificationEnabled, learner.NotificationHour)
	if err != nil {
		return fmt.Errorf("failed to save learner: %w", err)
	}
	return nil
}

// GetByID returns a learner by ID
func (r *LearnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Learner, error) {
	var learner models.Learner
	err := r.db.GetContext(ctx, &learner,
		r.db.Rebind("SELECT id, chat_id, notification_enabled, notification_hour FROM learners WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner by ID: %w", err)
	}
	return &learner, nil
}

// GetLearnersForNotification returns learners who want a reminder at hour and can be reached
func (r *LearnerRepository) GetLearnersForNotification(ctx context.Context, hour int) ([]models.Learner, error) {
	var learners []models.Learner
	err := r.db.SelectContext(ctx, &learners, r.db.Rebind(`
		SELECT id, chat_id, notification_enabled, notification_hour
		FROM learners
		WHERE notification_enabled AND notification_hour = ? AND chat_id <> 0
		ORDER BY id
	`), hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get learners for notification: %w", err)
	}
	return learners, nil
}
