package model

import "time"

type User struct {
	ID              int64     `json:"id"`
	RealmID         int64     `json:"realm_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	APIKey          string    `json:"-"`
	IsBot           bool      `json:"is_bot"`
	BotOwnerID      *int64    `json:"bot_owner_id,omitempty"`
	DefaultStreamID *int64    `json:"default_stream_id,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
