package models

import (
	"encoding/json"
	"time"
)

// ActivityEntry is one log-worthy action, buffered by the batching saga and
// written in bulk once per window.
type ActivityEntry struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"user_id"`
	Action     string          `db:"action" json:"action"`
	Data       json.RawMessage `db:"data" json:"data"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
}
