package cqrs

import (
	"context"
	"fmt"
)

// Command is an intent to mutate state, handled by exactly one handler.
type Command interface {
	CommandType() string
}

// Query is an intent to read state; handlers must not produce side effects.
type Query interface {
	QueryType() string
}

// CommandHandler executes one command type.
type CommandHandler func(ctx context.Context, cmd Command) (any, error)

// QueryHandler executes one query type.
type QueryHandler func(ctx context.Context, q Query) (any, error)

// Bus routes commands and queries to their single registered handler.
// Registration happens once during wiring; Dispatch/Ask are safe for
// concurrent use afterwards.
type Bus struct {
	commands map[string]CommandHandler
	queries  map[string]QueryHandler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		commands: make(map[string]CommandHandler),
		queries:  make(map[string]QueryHandler),
	}
}

// RegisterCommand binds a handler to a command type. Registering the same
// type twice is a wiring mistake and fails immediately.
func (b *Bus) RegisterCommand(commandType string, handler CommandHandler) error {
	if _, ok := b.commands[commandType]; ok {
		return fmt.Errorf("command handler already registered for %q", commandType)
	}
	b.commands[commandType] = handler
	return nil
}

// RegisterQuery binds a handler to a query type.
func (b *Bus) RegisterQuery(queryType string, handler QueryHandler) error {
	if _, ok := b.queries[queryType]; ok {
		return fmt.Errorf("query handler already registered for %q", queryType)
	}
	b.queries[queryType] = handler
	return nil
}

// Dispatch routes a command to its handler and waits for completion.
func (b *Bus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	handler, ok := b.commands[cmd.CommandType()]
	if !ok {
		return nil, fmt.Errorf("no handler registered for command %q", cmd.CommandType())
	}
	return handler(ctx, cmd)
}

// Ask routes a query to its handler and waits for the result.
func (b *Bus) Ask(ctx context.Context, q Query) (any, error) {
	handler, ok := b.queries[q.QueryType()]
	if !ok {
		return nil, fmt.Errorf("no handler registered for query %q", q.QueryType())
	}
	return handler(ctx, q)
}
