package saga

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"travel-service/internal/cqrs"
	"travel-service/internal/events"
	"travel-service/internal/models"
	"travel-service/internal/observability"
	"travel-service/internal/repositories"
)

// RecordActivityBatch is the downstream bulk-insert command emitted once per
// non-empty window.
type RecordActivityBatch struct {
	Entries []models.ActivityEntry
}

func (RecordActivityBatch) CommandType() string { return "activity.record_batch" }

// RegisterHandlers binds the batch command to the activity log repository.
func RegisterHandlers(bus *cqrs.Bus, repo repositories.ActivityLogRepository) error {
	return bus.RegisterCommand(RecordActivityBatch{}.CommandType(), func(ctx context.Context, cmd cqrs.Command) (any, error) {
		batch := cmd.(RecordActivityBatch)
		return nil, repo.InsertBatch(ctx, batch.Entries)
	})
}

// Dispatcher is the slice of the command bus the saga needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd cqrs.Command) (any, error)
}

// ActivityLogSaga buffers activity.recorded events into time-windowed
// batches and issues one bulk write per window. The buffer is the only
// shared mutable state: appends and the swap-and-flush both take the mutex,
// so no event is lost across a window boundary. Buffered entries not yet
// flushed are lost on crash; the pipeline is at-least-once durable only
// after a flush.
type ActivityLogSaga struct {
	mu     sync.Mutex
	buffer []models.ActivityEntry

	window     time.Duration
	dispatcher Dispatcher
	logger     *zap.Logger

	stop    chan struct{}
	stopped sync.WaitGroup
}

// NewActivityLogSaga constructs the saga with the configured window.
func NewActivityLogSaga(dispatcher Dispatcher, window time.Duration, logger *zap.Logger) *ActivityLogSaga {
	return &ActivityLogSaga{
		window:     window,
		dispatcher: dispatcher,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Register subscribes the saga to its single event type.
func (s *ActivityLogSaga) Register(eventBus *cqrs.EventBus) {
	eventBus.Subscribe(events.TypeActivityRecorded, func(ctx context.Context, event cqrs.Event) error {
		recorded := event.(events.ActivityRecorded)
		s.append(models.ActivityEntry{
			UserID:     recorded.UserID,
			Action:     recorded.Action,
			Data:       recorded.Data,
			OccurredAt: recorded.OccurredAt,
		})
		return nil
	})
}

func (s *ActivityLogSaga) append(entry models.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, entry)
}

// Start launches the flush loop. Windows are contiguous and non-overlapping:
// each tick closes the current window and opens the next.
func (s *ActivityLogSaga) Start() {
	s.stopped.Add(1)
	go func() {
		defer s.stopped.Done()
		ticker := time.NewTicker(s.window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Flush(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the flush loop and writes whatever the last window buffered.
func (s *ActivityLogSaga) Stop(ctx context.Context) {
	close(s.stop)
	s.stopped.Wait()
	s.Flush(ctx)
}

// Flush closes the current window. An empty window produces no command.
func (s *ActivityLogSaga) Flush(ctx context.Context) {
	s.mu.Lock()
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if _, err := s.dispatcher.Dispatch(ctx, RecordActivityBatch{Entries: batch}); err != nil {
		s.logger.Error("activity batch write failed",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return
	}
	observability.ObserveSagaFlush(len(batch))
	s.logger.Debug("activity batch flushed", zap.Int("batch_size", len(batch)))
}

// BufferedCount reports how many entries the open window currently holds.
func (s *ActivityLogSaga) BufferedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}
