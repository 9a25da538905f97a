package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/coursegen-api/internal/lease"
)

var (
	refreshScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// Locker implements lease.Locker with SET NX PX and token-checked scripts,
// so an owner can only refresh or release its own lease.
type Locker struct {
	rdb    *goredis.Client
	prefix string
}

var _ lease.Locker = (*Locker)(nil)

// NewLocker creates a Locker whose keys are namespaced under prefix.
func NewLocker(rdb *goredis.Client, prefix string) *Locker {
	return &Locker{rdb: rdb, prefix: prefix}
}

// Acquire implements lease.Locker.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (lease.Lease, error) {
	fullKey := l.prefix + ":lease:" + key
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, lease.ErrHeld
	}
	return &redisLease{rdb: l.rdb, key: key, fullKey: fullKey, token: token}, nil
}

type redisLease struct {
	rdb     *goredis.Client
	key     string
	fullKey string
	token   string
}

func (r *redisLease) Key() string { return r.key }

func (r *redisLease) Refresh(ctx context.Context, ttl time.Duration) error {
	n, err := refreshScript.Run(ctx, r.rdb, []string{r.fullKey}, r.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("refresh lease %s: %w", r.key, err)
	}
	if n == 0 {
		return lease.ErrLost
	}
	return nil
}

func (r *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, r.rdb, []string{r.fullKey}, r.token).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", r.key, err)
	}
	return nil
}
