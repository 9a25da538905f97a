package store

import (
	"context"

	"github.com/phrazzld/coursegen-api/internal/domain"
)

// ActivityLogStore is the append-only activity sink.
type ActivityLogStore interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
}
