package models

import "github.com/google/uuid"

// Learner holds the notification preferences of a learner
type Learner struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	ChatID              int64     `json:"chat_id" db:"chat_id"` // Telegram chat, 0 when unknown
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
}
