package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel-service/internal/apperrors"
	"travel-service/internal/cqrs"
	"travel-service/internal/events"
	"travel-service/internal/mocks"
	"travel-service/internal/models"
)

func newTestService(repo *mocks.NotificationRepositoryMock, gateway *mocks.GatewayMock) (*Service, *cqrs.EventBus) {
	eventBus := cqrs.NewEventBus(zap.NewNop())
	svc := NewService(repo, gateway, nil, eventBus, zap.NewNop(), 20)
	return svc, eventBus
}

func TestCreateNotificationPersistsAndPushes(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	created := models.Notification{ID: 11, UserID: 5, Type: "group_invitation"}
	repo.On("CreateNotification", mock.Anything, int64(5), "group_invitation", mock.Anything).Return(created, nil).Once()
	gateway.On("NotifyUser", int64(5), mock.MatchedBy(func(e models.WSEvent) bool {
		return e.Type == models.WSNotificationNew && e.Notification != nil && e.Notification.ID == 11
	})).Return(nil).Once()

	result, err := svc.createNotification(context.Background(), CreateNotification{UserID: 5, Type: "group_invitation"})
	require.NoError(t, err)
	require.Equal(t, created, result)

	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestCreateNotificationPushFailureIsSwallowed(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	repo.On("CreateNotification", mock.Anything, int64(5), "trip_update", mock.Anything).
		Return(models.Notification{ID: 12, UserID: 5}, nil).Once()
	gateway.On("NotifyUser", int64(5), mock.Anything).Return(errors.New("connection lost")).Once()

	// the row is the source of truth; a failed push must not fail the command
	result, err := svc.createNotification(context.Background(), CreateNotification{UserID: 5, Type: "trip_update"})
	require.NoError(t, err)
	require.Equal(t, int64(12), result.ID)
}

func TestCreateNotificationValidation(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	_, err := svc.createNotification(context.Background(), CreateNotification{UserID: 5})
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.createNotification(context.Background(), CreateNotification{Type: "trip_update"})
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	repo.On("MarkAllRead", mock.Anything, int64(5)).Return(int64(3), nil).Once()
	repo.On("MarkAllRead", mock.Anything, int64(5)).Return(int64(0), nil).Once()

	first, err := svc.markAllRead(context.Background(), MarkAllRead{UserID: 5})
	require.NoError(t, err)
	require.Equal(t, int64(3), first.Affected)

	second, err := svc.markAllRead(context.Background(), MarkAllRead{UserID: 5})
	require.NoError(t, err)
	require.Equal(t, int64(0), second.Affected)

	repo.AssertExpectations(t)
}

func TestUnreadCountFallsBackToStore(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	repo.On("CountUnread", mock.Anything, int64(5)).Return(int64(4), nil).Once()

	count, err := svc.unreadCount(context.Background(), UnreadCount{UserID: 5})
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
}

func TestInvitationCreatedEventCreatesNotification(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, eventBus := newTestService(repo, gateway)
	svc.SubscribeEvents(eventBus)

	repo.On("CreateNotification", mock.Anything, int64(9), "group_invitation", mock.MatchedBy(func(data json.RawMessage) bool {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return false
		}
		return payload["group_name"] == "Lisbon trip"
	})).Return(models.Notification{ID: 21, UserID: 9}, nil).Once()
	gateway.On("NotifyUser", int64(9), mock.Anything).Return(nil).Once()

	eventBus.Publish(context.Background(), events.InvitationCreated{
		Invitation: models.GroupInvitation{ID: 3, GroupID: 7, InviterID: 1, InvitedUserID: 9},
		GroupName:  "Lisbon trip",
	})

	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestRegisterBindsAllHandlersOnce(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	gateway := new(mocks.GatewayMock)
	svc, _ := newTestService(repo, gateway)

	bus := cqrs.NewBus()
	require.NoError(t, svc.Register(bus))
	require.Error(t, svc.Register(bus))
}
