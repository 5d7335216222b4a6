package models

// Item is a vocabulary entry learners are quizzed on
type Item struct {
	ID          int64  `json:"id" db:"id"`
	Prompt      string `json:"prompt" db:"prompt"`
	Translation string `json:"translation" db:"translation"`
	CategoryID  *int64 `json:"category_id,omitempty" db:"category_id"`
	Active      bool   `json:"active" db:"active"`
}

// HasCategory reports whether the item belongs to a category
func (i Item) HasCategory() bool {
	return i.CategoryID != nil
}
