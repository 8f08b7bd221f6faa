package models

// WebSocket event types pushed to clients. The REST API remains the source of
// truth; these frames are a best-effort realtime copy.
const (
	WSNotificationNew  = "notification:new"
	WSGroupMessage     = "group:message"
	WSGroupPinned      = "group:message_pinned"
	WSGroupDeleted     = "group:message_deleted"
)

// WSEvent is the envelope written to client connections.
type WSEvent struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
	Message      *GroupMessage `json:"message,omitempty"`
	GroupID      int64         `json:"group_id,omitempty"`
	MessageID    int64         `json:"message_id,omitempty"`
	SenderID     int64         `json:"sender_id,omitempty"`
}
