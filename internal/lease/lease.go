// Package lease provides exclusive, expiring ownership of a key. The pipeline
// holds a lease per course while it runs so two runs never interleave writes
// for the same course.
package lease

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrHeld is returned by Acquire when another owner holds the key.
	ErrHeld = errors.New("lease held by another owner")

	// ErrLost is returned by Refresh when the lease expired or was taken over.
	ErrLost = errors.New("lease lost")
)

// Locker hands out leases.
type Locker interface {
	// Acquire takes the key for ttl or returns ErrHeld.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is one granted ownership of a key.
type Lease interface {
	// Key returns the leased key.
	Key() string

	// Refresh extends the lease to ttl from now. Returns ErrLost when the
	// caller no longer owns the key.
	Refresh(ctx context.Context, ttl time.Duration) error

	// Release gives the key up. Releasing a lost lease is not an error.
	Release(ctx context.Context) error
}

// CourseKey is the lease key guarding a course's generation run.
func CourseKey(courseID string) string {
	return "course:" + courseID + ":generation"
}
