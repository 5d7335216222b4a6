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

const cardColumns = "id, learner_id, item_id, stage, last_check_date"

// CardRepository handles database operations for learner cards
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository creates a new repository instance
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Enroll adds an item to a learner's study set in the new stage.
// Enrolling an item twice keeps the existing card.
func (r *CardRepository) Enroll(ctx context.Context, learnerID uuid.UUID, itemID int64) (*models.LearnerCard, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO learner_cards (learner_id, item_id, stage)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id, item_id) DO NOTHING
	`), learnerID, itemID, models.StageNew)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll item %d: %w", itemID, err)
	}
	return r.Get(ctx, learnerID, itemID)
}

// Get returns the card of a learner for an item
func (r *CardRepository) Get(ctx context.Context, learnerID uuid.UUID, itemID int64) (*models.LearnerCard, error) {
	var card models.LearnerCard
	err := r.db.GetContext(ctx, &card,
		r.db.Rebind("SELECT "+cardColumns+" FROM learner_cards WHERE learner_id = ? AND item_id = ?"),
		learnerID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner card: %w", err)
	}
	return &card, nil
}

// Save stores the stage and last check date of a card
func (r *CardRepository) Save(ctx context.Context, card *models.LearnerCard) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE learner_cards SET
			stage = ?,
			last_check_date = ?
		WHERE learner_id = ? AND item_id = ?
	`), card.Stage, card.LastCheckDate, card.LearnerID, card.ItemID)
	if err != nil {
		return fmt.Errorf("failed to save learner card: %w", err)
	}
	return expectRow(result)
}

// ListForLearner returns every card of a learner
func (r *CardRepository) ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]models.LearnerCard, error) {
	var cards []models.LearnerCard
	err := r.db.SelectContext(ctx, &cards,
		r.db.Rebind("SELECT "+cardColumns+" FROM learner_cards WHERE learner_id = ? ORDER BY item_id"),
		learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list learner cards: %w", err)
	}
	return cards, nil
}

// ItemIDs returns the distinct item ids a learner has enrolled
func (r *CardRepository) ItemIDs(ctx context.Context, learnerID uuid.UUID) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		r.db.Rebind("SELECT DISTINCT item_id FROM learner_cards WHERE learner_id = ? ORDER BY item_id"),
		learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner item ids: %w", err)
	}
	return ids, nil
}
