package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SubscriberBuffer is the per-subscriber channel capacity.
const SubscriberBuffer = 16

// InMemoryBus is a process-local Bus. Events for a job fan out to every
// subscriber of that job; a subscriber whose buffer is full misses the event.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan *JobEvent]struct{}
	logger      *slog.Logger
}

var _ Bus = (*InMemoryBus)(nil)

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(logger *slog.Logger) *InMemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBus{
		subscribers: make(map[uuid.UUID]map[chan *JobEvent]struct{}),
		logger:      logger.With("component", "in_memory_event_bus"),
	}
}

// EmitEvent implements EventEmitter.
func (b *InMemoryBus) EmitEvent(ctx context.Context, event *JobEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subscribers[event.JobID]
	for ch := range subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"job_id", event.JobID,
				"event_id", event.ID)
		}
	}

	b.logger.Debug("emitted job event",
		"job_id", event.JobID,
		"progress", event.ProgressPercentage,
		"subscriber_count", len(subs))
	return nil
}

// Subscribe implements Subscriber.
func (b *InMemoryBus) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan *JobEvent, error) {
	ch := make(chan *JobEvent, SubscriberBuffer)

	b.mu.Lock()
	if b.subscribers[jobID] == nil {
		b.subscribers[jobID] = make(map[chan *JobEvent]struct{})
	}
	b.subscribers[jobID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers[jobID], ch)
		if len(b.subscribers[jobID]) == 0 {
			delete(b.subscribers, jobID)
		}
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// SubscriberCount reports how many subscribers a job has.
func (b *InMemoryBus) SubscriberCount(jobID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[jobID])
}
