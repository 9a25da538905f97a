package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/coursegen-api/internal/events"
)

// EventBus implements events.Bus over Redis pub/sub with one channel per job,
// so every server instance can stream progress of any job.
type EventBus struct {
	rdb    *goredis.Client
	prefix string
	logger *slog.Logger
}

var _ events.Bus = (*EventBus)(nil)

// NewEventBus creates an EventBus publishing on "<prefix>:job:<jobID>".
func NewEventBus(rdb *goredis.Client, prefix string, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		rdb:    rdb,
		prefix: prefix,
		logger: logger.With("component", "redis_event_bus"),
	}
}

// Channel returns the pub/sub channel of a job.
func (b *EventBus) Channel(jobID uuid.UUID) string {
	return b.prefix + ":job:" + jobID.String()
}

// EmitEvent implements events.EventEmitter.
func (b *EventBus) EmitEvent(ctx context.Context, event *events.JobEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode job event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.Channel(event.JobID), raw).Err(); err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}
	return nil
}

// Subscribe implements events.Subscriber.
func (b *EventBus) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan *events.JobEvent, error) {
	sub := b.rdb.Subscribe(ctx, b.Channel(jobID))

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan *events.JobEvent, events.SubscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev events.JobEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.logger.Warn("bad job event payload", "error", err, "channel", m.Channel)
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
