package models

import "time"

// Invitation statuses. Expiry is not a stored status: an invitation past
// expires_at is treated as invalid at read time while still pending in storage.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// GroupInvitation tracks the invite lifecycle for a (group, invited user) pair.
// At most one pending invitation may exist per pair.
type GroupInvitation struct {
	ID            int64      `db:"id" json:"invitation_id"`
	GroupID       int64      `db:"group_id" json:"group_id"`
	InviterID     int64      `db:"inviter_id" json:"inviter_id"`
	InvitedUserID int64      `db:"invited_user_id" json:"invited_user_id"`
	Status        string     `db:"status" json:"status"`
	InvitedAt     time.Time  `db:"invited_at" json:"invited_at"`
	RespondedAt   *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	ExpiresAt     time.Time  `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the invitation is past its deadline at the given instant.
func (i GroupInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
