package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"travel-service/internal/models"
)

// ReactionRepository manages per-user message reactions. Counts are computed
// by aggregation at query time, never maintained incrementally.
type ReactionRepository interface {
	UpsertReaction(ctx context.Context, messageID, userID int64, reactionID string) (models.Reaction, error)
	DeleteReaction(ctx context.Context, messageID, userID int64) error
	ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error)
	CountByReaction(ctx context.Context, messageID int64) ([]models.ReactionCount, error)
}

// ReactionRepo is a sqlx-backed implementation.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// UpsertReaction sets the user's reaction on a message, replacing any
// previous one. The (message_id, user_id) pair is unique.
func (r *ReactionRepo) UpsertReaction(ctx context.Context, messageID, userID int64, reactionID string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.GetContext(ctx, &reaction,
		`INSERT INTO message_reactions (message_id, user_id, reaction_id) VALUES ($1, $2, $3)
         ON CONFLICT (message_id, user_id) DO UPDATE SET reaction_id = EXCLUDED.reaction_id
         RETURNING id, message_id, user_id, reaction_id, created_at`,
		messageID, userID, reactionID)
	return reaction, err
}

// DeleteReaction removes the user's reaction if present.
func (r *ReactionRepo) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_reactions WHERE message_id=$1 AND user_id=$2`, messageID, userID)
	return err
}

// ListReactions returns every reaction row on a message.
func (r *ReactionRepo) ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	err := r.db.SelectContext(ctx, &reactions,
		`SELECT id, message_id, user_id, reaction_id, created_at FROM message_reactions WHERE message_id=$1 ORDER BY created_at ASC`,
		messageID)
	return reactions, err
}

// CountByReaction aggregates reaction counts grouped by reaction id.
func (r *ReactionRepo) CountByReaction(ctx context.Context, messageID int64) ([]models.ReactionCount, error) {
	counts := []models.ReactionCount{}
	err := r.db.SelectContext(ctx, &counts,
		`SELECT reaction_id, COUNT(*) AS count FROM message_reactions WHERE message_id=$1 GROUP BY reaction_id ORDER BY count DESC`,
		messageID)
	return counts, err
}
