package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	rdb    *goredis.Client
	prefix string
}

// NewRateLimiter creates a RateLimiter whose counters live under prefix.
func NewRateLimiter(rdb *goredis.Client, prefix string) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: prefix}
}

// Allow records one request for key and reports whether it fits in limit
// requests per window. When it does not, retryAfter is the remaining window.
func (r *RateLimiter) Allow(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, remaining int, retryAfter time.Duration, err error) {
	fullKey := fmt.Sprintf("%s:ratelimit:%s", r.prefix, key)

	count, err := r.rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	// Set expiration on first request
	if count == 1 {
		if err := r.rdb.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	if count > int64(limit) {
		ttl, err := r.rdb.TTL(ctx, fullKey).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return false, 0, ttl, nil
	}

	return true, limit - int(count), 0, nil
}
