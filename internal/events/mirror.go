package events

import (
	"context"

	"travel-service/internal/cqrs"
)

// Publisher is the outbound slice of the AMQP publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Envelope wraps a mirrored domain event for external consumers.
type Envelope struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

// MirrorToBroker republishes selected in-process domain events to the topic
// exchange so external systems can consume them. Publish errors surface via
// the event bus logging; the originating command has already committed.
func MirrorToBroker(eventBus *cqrs.EventBus, publisher Publisher) {
	mirror := func(routingKey string) cqrs.EventHandler {
		return func(ctx context.Context, event cqrs.Event) error {
			return publisher.Publish(ctx, routingKey, Envelope{
				EventType: event.EventType(),
				Payload:   event,
			})
		}
	}

	eventBus.Subscribe(TypeNotificationCreated, mirror("notifications.created"))
	eventBus.Subscribe(TypeGroupMessageSent, mirror("groups.message_sent"))
	eventBus.Subscribe(TypeInvitationCreated, mirror("groups.invitation_created"))
	eventBus.Subscribe(TypeInvitationResponded, mirror("groups.invitation_responded"))
}
