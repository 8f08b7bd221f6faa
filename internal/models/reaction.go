package models

import "time"

// Reaction is a single user's reaction to a message. The schema enforces at
// most one reaction per (message_id, user_id) pair.
type Reaction struct {
	ID         int64     `db:"id" json:"id"`
	MessageID  int64     `db:"message_id" json:"message_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ReactionID string    `db:"reaction_id" json:"reaction_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReactionCount is an aggregated view computed at query time.
type ReactionCount struct {
	ReactionID string `db:"reaction_id" json:"reaction_id"`
	Count      int    `db:"count" json:"count"`
}

// ReactionSummary is the API view of all reactions on a message.
type ReactionSummary struct {
	Total     int             `json:"total"`
	Reactions []ReactionCount `json:"reactions"`
	Users     []Reaction      `json:"users"`
}
