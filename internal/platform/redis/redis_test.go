package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/coursegen-api/internal/config"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/lease"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{})
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.ErrorContains(t, err, "redis ping")
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	locker := NewLocker(rdb, "coursegen")
	key := lease.CourseKey(uuid.NewString())

	held, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, key, held.Key())
	assert.True(t, mr.Exists("coursegen:lease:"+key))

	_, err = locker.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, lease.ErrHeld)

	require.NoError(t, held.Refresh(ctx, 2*time.Minute))
	assert.Equal(t, 2*time.Minute, mr.TTL("coursegen:lease:"+key))

	t.Run("expired lease is lost and cannot release the new owner", func(t *testing.T) {
		mr.FastForward(3 * time.Minute)
		assert.ErrorIs(t, held.Refresh(ctx, time.Minute), lease.ErrLost)

		next, err := locker.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)

		require.NoError(t, held.Release(ctx))
		assert.True(t, mr.Exists("coursegen:lease:"+key))

		require.NoError(t, next.Release(ctx))
		assert.False(t, mr.Exists("coursegen:lease:"+key))
	})
}

func TestEventBus(t *testing.T) {
	_, rdb := newTestRedis(t)
	bus := NewEventBus(rdb, "coursegen", slog.New(slog.NewTextHandler(io.Discard, nil)))

	job, err := domain.NewJob(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "coursegen:job:"+job.ID.String(), bus.Channel(job.ID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, job.Start(time.Now()))
	require.NoError(t, bus.EmitEvent(ctx, events.NewJobEvent(job)))

	select {
	case ev := <-ch:
		assert.Equal(t, job.ID, ev.JobID)
		assert.Equal(t, domain.JobStatusProcessing, ev.Status)
		assert.Equal(t, domain.ProgressStarted, ev.ProgressPercentage)
		assert.Equal(t, domain.StepStarting, ev.CurrentStep)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb, "coursegen")

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "generate:user-1", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, retryAfter, err := limiter.Allow(ctx, "generate:user-1", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Hour, retryAfter)

	allowed, _, _, err = limiter.Allow(ctx, "generate:user-2", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per key")

	mr.FastForward(time.Hour + time.Second)
	allowed, _, _, err = limiter.Allow(ctx, "generate:user-1", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed, "window resets")
}
