package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Group represents a travel group.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMessage is a message posted in a group. ReplyToMessageID is a soft
// self-reference validated at the application layer, not by the schema.
type GroupMessage struct {
	ID               int64          `db:"id" json:"id"`
	GroupID          int64          `db:"group_id" json:"group_id"`
	SenderID         int64          `db:"sender_id" json:"sender_id"`
	Content          string         `db:"content" json:"content"`
	Attachments      pq.StringArray `db:"attachments" json:"attachments"`
	ReplyToMessageID sql.NullInt64  `db:"reply_to_message_id" json:"reply_to_message_id,omitempty"`
	Pinned           bool           `db:"pinned" json:"pinned"`
	Deleted          bool           `db:"deleted" json:"deleted"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// MessagePage is one cursor page of group history, newest first.
type MessagePage struct {
	Messages []GroupMessage `json:"messages"`
	HasMore  bool           `json:"has_more"`
	Total    int            `json:"total"`
}
