package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/vocabquiz/pkg/models"
)

// DefaultIntervals holds the waiting time in days before a card in a stage is due again.
// Mastered has no interval.
var DefaultIntervals = map[models.Stage]int{
	models.StageNew:   0,
	models.StageDay1:  1,
	models.StageDays3: 3,
	models.StageDays7: 7,
}

// Leitner implements the five box review schedule
type Leitner struct {
	// Интервалы повторения по коробкам
	Intervals map[models.Stage]int
}

// NewLeitner создает новый экземпляр Leitner с интервалами по умолчанию
func NewLeitner() *Leitner {
	return &Leitner{Intervals: DefaultIntervals}
}

var defaultLeitner = NewLeitner()

// IsDue reports whether a card in stage, last checked on lastCheckDate, should be reviewed on today.
//
// Mastered cards are always reported due.
func (l *Leitner) IsDue(stage models.Stage, lastCheckDate *time.Time, today time.Time) bool {
	if stage == models.StageMastered {
		return true
	}
	if lastCheckDate == nil {
		return true
	}

	// Unknown stages behave like new cards
	days := l.Intervals[stage]
	dueDate := dateOf(*lastCheckDate).AddDate(0, 0, days)
	return !dateOf(today).Before(dueDate)
}

// Process applies a review outcome to the card and stamps today as its last check date
func (l *Leitner) Process(card *models.LearnerCard, correct bool, today time.Time) {
	if correct {
		card.Stage = AdvanceOnCorrect(card.Stage)
	} else {
		card.Stage = AdvanceOnWrong(card.Stage)
	}
	checked := dateOf(today)
	card.LastCheckDate = &checked
}

// GetNextCards returns up to limit cards due on today, most urgent first.
// A limit of zero or less returns every due card.
func (l *Leitner) GetNextCards(cards []models.LearnerCard, today time.Time, limit int) []models.LearnerCard {
	var due []models.LearnerCard
	for _, c := range cards {
		if l.IsDue(c.Stage, c.LastCheckDate, today) {
			due = append(due, c)
		}
	}

	// Sort due cards by priority:
	// 1. Cards that are still new
	// 2. Cards checked longest ago (never checked first)
	// 3. Lower item id
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if (a.Stage == models.StageNew) != (b.Stage == models.StageNew) {
			return a.Stage == models.StageNew
		}
		switch {
		case a.LastCheckDate == nil && b.LastCheckDate != nil:
			return true
		case a.LastCheckDate != nil && b.LastCheckDate == nil:
			return false
		case a.LastCheckDate != nil && b.LastCheckDate != nil && !a.LastCheckDate.Equal(*b.LastCheckDate):
			return a.LastCheckDate.Before(*b.LastCheckDate)
		}
		return a.ItemID < b.ItemID
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// IsDue reports due-ness with the default intervals
func IsDue(stage models.Stage, lastCheckDate *time.Time, today time.Time) bool {
	return defaultLeitner.IsDue(stage, lastCheckDate, today)
}

// DueCards filters and orders cards with the default intervals
func DueCards(cards []models.LearnerCard, today time.Time, limit int) []models.LearnerCard {
	return defaultLeitner.GetNextCards(cards, today, limit)
}

// AdvanceOnCorrect moves a card one box forward; mastered stays mastered
func AdvanceOnCorrect(stage models.Stage) models.Stage {
	switch stage {
	case models.StageDays7, models.StageMastered:
		return models.StageMastered
	case models.StageNew:
		return models.StageDay1
	case models.StageDay1:
		return models.StageDays3
	default:
		return models.StageDays7
	}
}

// AdvanceOnWrong sends a card back to the first box
func AdvanceOnWrong(models.Stage) models.Stage {
	return models.StageNew
}

// dateOf drops the time of day, keeping the calendar date as seen in t's location
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
