package cqrs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event is an immutable fact published after a command's primary effect has
// committed. Zero or more subscribers may observe it.
type Event interface {
	EventType() string
}

// EventHandler consumes one event. A failing handler is logged, never
// propagated to the publisher.
type EventHandler func(ctx context.Context, event Event) error

// EventBus fans events out to every subscriber of their type. Delivery order
// across subscribers is unspecified.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[string][]EventHandler
	logger *zap.Logger
}

// NewEventBus creates an event bus logging subscriber failures to logger.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subs:   make(map[string][]EventHandler),
		logger: logger,
	}
}

// Subscribe registers a handler for an event type. Multiple handlers per
// type are allowed.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventType] = append(b.subs[eventType], handler)
}

// Publish delivers the event to every current subscriber. A subscriber that
// fails or panics does not halt delivery to the others; the command that
// produced the event has already committed, so failures are recovered
// locally and reported.
func (b *EventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.subs[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, event, handler)
	}
}

func (b *EventBus) deliver(ctx context.Context, event Event, handler EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := handler(ctx, event); err != nil {
		b.logger.Error("event subscriber failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
