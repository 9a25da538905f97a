// Package redis backs the coordination pieces of the service with Redis: the
// per-course generation lease, the job progress event bus, and the request
// rate limiter.
package redis
