package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"travel-service/internal/models"
)

// GroupMessageRepository defines interactions for group messages.
type GroupMessageRepository interface {
	CreateGroupMessage(ctx context.Context, groupID, senderID int64, content string, attachments []string, replyToID *int64) (models.GroupMessage, error)
	ListMessagesBefore(ctx context.Context, groupID int64, beforeID int64, limit int) ([]models.GroupMessage, error)
	CountMessages(ctx context.Context, groupID int64) (int, error)
	GetGroupMessage(ctx context.Context, messageID int64) (models.GroupMessage, error)
	SetPinned(ctx context.Context, messageID int64, pinned bool) error
	DeleteForAll(ctx context.Context, messageID int64) error
}

const groupMessageColumns = `id, group_id, sender_id, content, attachments, reply_to_message_id, pinned, deleted, created_at, updated_at`

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateGroupMessage persists a group message.
func (r *GroupMessageRepo) CreateGroupMessage(ctx context.Context, groupID, senderID int64, content string, attachments []string, replyToID *int64) (models.GroupMessage, error) {
	if attachments == nil {
		attachments = []string{}
	}
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO group_messages (group_id, sender_id, content, attachments, reply_to_message_id)
         VALUES ($1, $2, $3, $4, $5) RETURNING `+groupMessageColumns,
		groupID, senderID, content, pq.Array(attachments), replyToID)
	return msg, err
}

// ListMessagesBefore returns up to limit messages with id below the cursor,
// newest first. A zero cursor means "from the latest".
func (r *GroupMessageRepo) ListMessagesBefore(ctx context.Context, groupID int64, beforeID int64, limit int) ([]models.GroupMessage, error) {
	msgs := []models.GroupMessage{}
	var err error
	if beforeID > 0 {
		err = r.db.SelectContext(ctx, &msgs,
			`SELECT `+groupMessageColumns+` FROM group_messages
             WHERE group_id=$1 AND id < $2 AND deleted = FALSE
             ORDER BY id DESC LIMIT $3`, groupID, beforeID, limit)
	} else {
		err = r.db.SelectContext(ctx, &msgs,
			`SELECT `+groupMessageColumns+` FROM group_messages
             WHERE group_id=$1 AND deleted = FALSE
             ORDER BY id DESC LIMIT $2`, groupID, limit)
	}
	return msgs, err
}

// CountMessages returns the number of visible messages in the group.
func (r *GroupMessageRepo) CountMessages(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM group_messages WHERE group_id=$1 AND deleted = FALSE`, groupID)
	return count, err
}

// GetGroupMessage fetches a single message.
func (r *GroupMessageRepo) GetGroupMessage(ctx context.Context, messageID int64) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT `+groupMessageColumns+` FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// SetPinned updates the pinned flag.
func (r *GroupMessageRepo) SetPinned(ctx context.Context, messageID int64, pinned bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE group_messages SET pinned=$2, updated_at=NOW() WHERE id=$1 AND deleted = FALSE`, messageID, pinned)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteForAll marks a message deleted for everyone. Authorization is the
// service's responsibility.
func (r *GroupMessageRepo) DeleteForAll(ctx context.Context, messageID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE group_messages SET deleted = TRUE, updated_at=NOW() WHERE id=$1 AND deleted = FALSE`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
