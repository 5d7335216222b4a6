package models

// Category groups related items; distractors are drawn from the same category first
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
