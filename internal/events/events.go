package events

import (
	"encoding/json"
	"time"

	"travel-service/internal/models"
)

// Event type discriminators. The activity saga subscribes to exactly one
// type; the rest decouple notification side effects from their commands.
const (
	TypeActivityRecorded    = "activity.recorded"
	TypeGroupMessageSent    = "group.message.sent"
	TypeInvitationCreated   = "group.invitation.created"
	TypeInvitationResponded = "group.invitation.responded"
	TypeNotificationCreated = "notification.created"
)

// ActivityRecorded marks a log-worthy action for the batching saga.
type ActivityRecorded struct {
	UserID     int64
	Action     string
	Data       json.RawMessage
	OccurredAt time.Time
}

func (ActivityRecorded) EventType() string { return TypeActivityRecorded }

// GroupMessageSent is published after a message row is committed.
type GroupMessageSent struct {
	Message models.GroupMessage
}

func (GroupMessageSent) EventType() string { return TypeGroupMessageSent }

// InvitationCreated is published after a pending invitation is committed.
type InvitationCreated struct {
	Invitation models.GroupInvitation
	GroupName  string
}

func (InvitationCreated) EventType() string { return TypeInvitationCreated }

// InvitationResponded is published after a terminal transition.
type InvitationResponded struct {
	Invitation models.GroupInvitation
}

func (InvitationResponded) EventType() string { return TypeInvitationResponded }

// NotificationCreated is published after the notification row is durable.
type NotificationCreated struct {
	Notification models.Notification
}

func (NotificationCreated) EventType() string { return TypeNotificationCreated }
