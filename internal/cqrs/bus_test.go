package cqrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type testCommand struct{ value int }

func (testCommand) CommandType() string { return "test.command" }

type testQuery struct{}

func (testQuery) QueryType() string { return "test.query" }

func TestBusDispatchRoutesToHandler(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.RegisterCommand("test.command", func(ctx context.Context, cmd Command) (any, error) {
		return cmd.(testCommand).value * 2, nil
	}))

	result, err := bus.Dispatch(context.Background(), testCommand{value: 21})
	require.NoError(t, err)
	require.Equal(t, 42, result)
}

func TestBusDispatchUnregisteredCommandFails(t *testing.T) {
	bus := NewBus()

	_, err := bus.Dispatch(context.Background(), testCommand{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no handler registered")
}

func TestBusDuplicateRegistrationFails(t *testing.T) {
	bus := NewBus()
	handler := func(ctx context.Context, cmd Command) (any, error) { return nil, nil }

	require.NoError(t, bus.RegisterCommand("test.command", handler))
	require.Error(t, bus.RegisterCommand("test.command", handler))
}

func TestBusAskRoutesToQueryHandler(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.RegisterQuery("test.query", func(ctx context.Context, q Query) (any, error) {
		return "answer", nil
	}))

	result, err := bus.Ask(context.Background(), testQuery{})
	require.NoError(t, err)
	require.Equal(t, "answer", result)
}

func TestBusAskUnregisteredQueryFails(t *testing.T) {
	bus := NewBus()

	_, err := bus.Ask(context.Background(), testQuery{})
	require.Error(t, err)
}
