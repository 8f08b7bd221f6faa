package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"travel-service/internal/models"
)

// InvitationRepository manages the group invitation lifecycle. Expiry is
// lazy: rows past expires_at stay pending in storage and are filtered or
// rejected at read time.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, groupID, inviterID, invitedUserID int64, expiresAt time.Time) (models.GroupInvitation, error)
	GetInvitation(ctx context.Context, invitationID int64) (models.GroupInvitation, error)
	ResolveInvitation(ctx context.Context, invitationID int64, status string) (models.GroupInvitation, error)
	ListPendingForUser(ctx context.Context, userID int64, now time.Time) ([]models.GroupInvitation, error)
}

const invitationColumns = `id, group_id, inviter_id, invited_user_id, status, invited_at, responded_at, expires_at`

// InvitationRepo is a sqlx-backed implementation.
type InvitationRepo struct {
	db *sqlx.DB
}

// NewInvitationRepo constructs an InvitationRepo.
func NewInvitationRepo(db *sqlx.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

// CreateInvitation inserts a pending invitation. The partial unique index on
// (group_id, invited_user_id) WHERE status='pending' rejects duplicates.
func (r *InvitationRepo) CreateInvitation(ctx context.Context, groupID, inviterID, invitedUserID int64, expiresAt time.Time) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	err := r.db.GetContext(ctx, &inv,
		`INSERT INTO group_invitations (group_id, inviter_id, invited_user_id, expires_at)
         VALUES ($1, $2, $3, $4) RETURNING `+invitationColumns,
		groupID, inviterID, invitedUserID, expiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.GroupInvitation{}, ErrPendingInvitationExists
		}
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

// GetInvitation fetches a single invitation.
func (r *InvitationRepo) GetInvitation(ctx context.Context, invitationID int64) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	err := r.db.GetContext(ctx, &inv, `SELECT `+invitationColumns+` FROM group_invitations WHERE id=$1`, invitationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupInvitation{}, ErrInvitationNotFound
	}
	return inv, err
}

// ResolveInvitation transitions pending -> accepted|declined exactly once.
// The WHERE status='pending' guard makes concurrent responses race-safe: the
// loser sees zero rows and gets ErrInvitationAlreadyResolved.
func (r *InvitationRepo) ResolveInvitation(ctx context.Context, invitationID int64, status string) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	err := r.db.GetContext(ctx, &inv,
		`UPDATE group_invitations SET status=$2, responded_at=NOW()
         WHERE id=$1 AND status='pending' RETURNING `+invitationColumns,
		invitationID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupInvitation{}, ErrInvitationAlreadyResolved
	}
	return inv, err
}

// ListPendingForUser returns pending, unexpired invitations for the user.
func (r *InvitationRepo) ListPendingForUser(ctx context.Context, userID int64, now time.Time) ([]models.GroupInvitation, error) {
	invs := []models.GroupInvitation{}
	err := r.db.SelectContext(ctx, &invs,
		`SELECT `+invitationColumns+` FROM group_invitations
         WHERE invited_user_id=$1 AND status='pending' AND expires_at > $2
         ORDER BY invited_at DESC`, userID, now)
	return invs, err
}
