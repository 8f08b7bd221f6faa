package repositories

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"travel-service/internal/models"
)

// NotificationRepository persists notification rows, the durable record
// behind the best-effort realtime push.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID int64, notificationType string, data json.RawMessage) (models.Notification, error)
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

const notificationColumns = `id, user_id, type, data, is_read, created_at, updated_at`

// NotificationRepo is a sqlx-backed implementation.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateNotification inserts a notification row.
func (r *NotificationRepo) CreateNotification(ctx context.Context, userID int64, notificationType string, data json.RawMessage) (models.Notification, error) {
	if data == nil {
		data = json.RawMessage(`{}`)
	}
	var n models.Notification
	err := r.db.GetContext(ctx, &n,
		`INSERT INTO notifications (user_id, type, data) VALUES ($1, $2, $3) RETURNING `+notificationColumns,
		userID, notificationType, data)
	return n, err
}

// ListNotifications returns the user's notifications, newest first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	var err error
	if unreadOnly {
		err = r.db.SelectContext(ctx, &notifications,
			`SELECT `+notificationColumns+` FROM notifications WHERE user_id=$1 AND is_read = FALSE ORDER BY id DESC LIMIT $2`,
			userID, limit)
	} else {
		err = r.db.SelectContext(ctx, &notifications,
			`SELECT `+notificationColumns+` FROM notifications WHERE user_id=$1 ORDER BY id DESC LIMIT $2`,
			userID, limit)
	}
	return notifications, err
}

// MarkAllRead flips every unread row for the user and returns the affected
// count. Calling it again right away affects zero rows.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE user_id=$1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread returns the number of unread rows for the user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read = FALSE`, userID)
	return count, err
}
