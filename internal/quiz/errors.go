package quiz

import "github.com/pkg/errors"

// Error kinds of the question engine. Check them with errors.Is.
var (
	// ErrPoolExhausted means no eligible item is left; callers get a short result.
	ErrPoolExhausted = errors.New("quiz: no eligible item left in pool")
	// ErrEmptyTranslation means the item cannot anchor a question.
	ErrEmptyTranslation = errors.New("quiz: item has an empty translation")
	// ErrInvalidCount rejects requests for fewer than one question.
	ErrInvalidCount = errors.New("quiz: count must be at least 1")
)
