package models

import (
	"time"

	"github.com/google/uuid"
)

// LearnerCard tracks one learner's review state for one item.
// The stage and the last check date always change together.
type LearnerCard struct {
	ID            int64      `json:"id" db:"id"`
	LearnerID     uuid.UUID  `json:"learner_id" db:"learner_id"`
	ItemID        int64      `json:"item_id" db:"item_id"`
	Stage         Stage      `json:"stage" db:"stage"`
	LastCheckDate *time.Time `json:"last_check_date" db:"last_check_date"`
}
