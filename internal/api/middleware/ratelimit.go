package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/coursegen-api/internal/api/shared"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Duration, error)
}

// RateLimit limits authenticated users to limit requests per window on the
// wrapped routes. It must run after Authenticate. A limiter failure lets the
// request through.
func RateLimit(limiter RateLimiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), scope+":"+userID.String(), limit, window)
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable",
					slog.String("scope", scope),
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
					"Too many generation requests", nil, shared.WithElevatedLogLevel())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
