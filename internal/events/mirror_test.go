package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"travel-service/internal/cqrs"
	"travel-service/internal/mocks"
	"travel-service/internal/models"
)

func TestMirrorRepublishesDomainEvents(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	eventBus := cqrs.NewEventBus(zap.NewNop())
	MirrorToBroker(eventBus, publisher)

	publisher.On("Publish", mock.Anything, "groups.message_sent", mock.MatchedBy(func(e Envelope) bool {
		return e.EventType == TypeGroupMessageSent
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, "notifications.created", mock.MatchedBy(func(e Envelope) bool {
		return e.EventType == TypeNotificationCreated
	})).Return(nil).Once()

	eventBus.Publish(context.Background(), GroupMessageSent{Message: models.GroupMessage{ID: 1, GroupID: 9}})
	eventBus.Publish(context.Background(), NotificationCreated{Notification: models.Notification{ID: 2}})

	publisher.AssertExpectations(t)
}

func TestMirrorIgnoresUnmappedEvents(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	eventBus := cqrs.NewEventBus(zap.NewNop())
	MirrorToBroker(eventBus, publisher)

	// activity events stay internal; the saga owns their durability
	eventBus.Publish(context.Background(), ActivityRecorded{UserID: 1, Action: "noop"})

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
