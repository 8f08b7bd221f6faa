package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"travel-service/internal/apperrors"
	"travel-service/internal/cache"
	"travel-service/internal/cqrs"
	"travel-service/internal/events"
	"travel-service/internal/models"
	"travel-service/internal/observability"
	"travel-service/internal/repositories"
)

// Gateway is the slice of the websocket hub the service pushes through.
type Gateway interface {
	NotifyUser(userID int64, event models.WSEvent) error
}

// CreateNotification inserts a notification row and pushes a realtime copy.
type CreateNotification struct {
	UserID int64
	Type   string
	Data   json.RawMessage
}

func (CreateNotification) CommandType() string { return "notification.create" }

// MarkAllRead flips every unread notification of the caller.
type MarkAllRead struct {
	UserID int64
}

func (MarkAllRead) CommandType() string { return "notification.mark_all_read" }

// MarkAllReadResult carries the affected row count.
type MarkAllReadResult struct {
	Affected int64 `json:"affected"`
}

// ListNotifications is a pure read, newest first.
type ListNotifications struct {
	UserID     int64
	UnreadOnly bool
	Limit      int
}

func (ListNotifications) QueryType() string { return "notification.list" }

// UnreadCount reads the unread counter, cache first.
type UnreadCount struct {
	UserID int64
}

func (UnreadCount) QueryType() string { return "notification.unread_count" }

// Service owns the notification command/query handlers and the event
// subscriptions that create notifications as side effects of other commands.
type Service struct {
	repo         repositories.NotificationRepository
	gateway      Gateway
	unreadCache  *cache.UnreadCache
	eventBus     *cqrs.EventBus
	logger       *zap.Logger
	defaultLimit int
}

// NewService constructs the notification service.
func NewService(repo repositories.NotificationRepository, gateway Gateway, unreadCache *cache.UnreadCache, eventBus *cqrs.EventBus, logger *zap.Logger, defaultLimit int) *Service {
	return &Service{
		repo:         repo,
		gateway:      gateway,
		unreadCache:  unreadCache,
		eventBus:     eventBus,
		logger:       logger,
		defaultLimit: defaultLimit,
	}
}

// Register binds all handlers onto the bus.
func (s *Service) Register(bus *cqrs.Bus) error {
	if err := bus.RegisterCommand(CreateNotification{}.CommandType(), func(ctx context.Context, cmd cqrs.Command) (any, error) {
		return s.createNotification(ctx, cmd.(CreateNotification))
	}); err != nil {
		return err
	}
	if err := bus.RegisterCommand(MarkAllRead{}.CommandType(), func(ctx context.Context, cmd cqrs.Command) (any, error) {
		return s.markAllRead(ctx, cmd.(MarkAllRead))
	}); err != nil {
		return err
	}
	if err := bus.RegisterQuery(ListNotifications{}.QueryType(), func(ctx context.Context, q cqrs.Query) (any, error) {
		return s.listNotifications(ctx, q.(ListNotifications))
	}); err != nil {
		return err
	}
	return bus.RegisterQuery(UnreadCount{}.QueryType(), func(ctx context.Context, q cqrs.Query) (any, error) {
		return s.unreadCount(ctx, q.(UnreadCount))
	})
}

// SubscribeEvents decouples "notify the user" from the commands that cause
// it: the invitation handlers never know notifications exist.
func (s *Service) SubscribeEvents(eventBus *cqrs.EventBus) {
	eventBus.Subscribe(events.TypeInvitationCreated, func(ctx context.Context, event cqrs.Event) error {
		created := event.(events.InvitationCreated)
		data, err := json.Marshal(map[string]any{
			"invitation_id": created.Invitation.ID,
			"group_id":      created.Invitation.GroupID,
			"group_name":    created.GroupName,
			"inviter_id":    created.Invitation.InviterID,
			"expires_at":    created.Invitation.ExpiresAt,
		})
		if err != nil {
			return err
		}
		_, err = s.createNotification(ctx, CreateNotification{
			UserID: created.Invitation.InvitedUserID,
			Type:   "group_invitation",
			Data:   data,
		})
		return err
	})

	eventBus.Subscribe(events.TypeInvitationResponded, func(ctx context.Context, event cqrs.Event) error {
		responded := event.(events.InvitationResponded)
		data, err := json.Marshal(map[string]any{
			"invitation_id":   responded.Invitation.ID,
			"group_id":        responded.Invitation.GroupID,
			"invited_user_id": responded.Invitation.InvitedUserID,
			"status":          responded.Invitation.Status,
		})
		if err != nil {
			return err
		}
		_, err = s.createNotification(ctx, CreateNotification{
			UserID: responded.Invitation.InviterID,
			Type:   "group_invitation_response",
			Data:   data,
		})
		return err
	})
}

// createNotification writes the durable row, then attempts the realtime
// push. The row is the source of truth: push failure is logged and swallowed
// and the client reconciles over REST on reconnect.
func (s *Service) createNotification(ctx context.Context, cmd CreateNotification) (models.Notification, error) {
	if cmd.UserID == 0 {
		return models.Notification{}, apperrors.Validation("user id is required")
	}
	if cmd.Type == "" {
		return models.Notification{}, apperrors.Validation("notification type is required")
	}

	notification, err := s.repo.CreateNotification(ctx, cmd.UserID, cmd.Type, cmd.Data)
	if err != nil {
		return models.Notification{}, apperrors.Internal("could not create notification", err)
	}

	s.unreadCache.Invalidate(ctx, cmd.UserID)

	if err := s.gateway.NotifyUser(cmd.UserID, models.WSEvent{
		Type:         models.WSNotificationNew,
		Notification: &notification,
	}); err != nil {
		observability.IncNotificationPush("error")
		s.logger.Warn("realtime notification push failed",
			zap.Int64("user_id", cmd.UserID),
			zap.Int64("notification_id", notification.ID),
			zap.Error(err),
		)
	} else {
		observability.IncNotificationPush("ok")
	}

	s.eventBus.Publish(ctx, events.NotificationCreated{Notification: notification})
	s.eventBus.Publish(ctx, events.ActivityRecorded{
		UserID:     cmd.UserID,
		Action:     "notification_created",
		Data:       json.RawMessage(fmt.Sprintf(`{"notification_id":%d,"type":%q}`, notification.ID, notification.Type)),
		OccurredAt: time.Now().UTC(),
	})

	return notification, nil
}

func (s *Service) markAllRead(ctx context.Context, cmd MarkAllRead) (MarkAllReadResult, error) {
	affected, err := s.repo.MarkAllRead(ctx, cmd.UserID)
	if err != nil {
		return MarkAllReadResult{}, apperrors.Internal("could not mark notifications read", err)
	}
	s.unreadCache.Invalidate(ctx, cmd.UserID)
	return MarkAllReadResult{Affected: affected}, nil
}

func (s *Service) listNotifications(ctx context.Context, q ListNotifications) ([]models.Notification, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	notifications, err := s.repo.ListNotifications(ctx, q.UserID, q.UnreadOnly, limit)
	if err != nil {
		return nil, apperrors.Internal("could not load notifications", err)
	}
	return notifications, nil
}

func (s *Service) unreadCount(ctx context.Context, q UnreadCount) (int64, error) {
	if count, ok := s.unreadCache.Get(ctx, q.UserID); ok {
		return count, nil
	}
	count, err := s.repo.CountUnread(ctx, q.UserID)
	if err != nil {
		return 0, apperrors.Internal("could not count notifications", err)
	}
	s.unreadCache.Set(ctx, q.UserID, count)
	return count, nil
}
