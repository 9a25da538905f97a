package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// PostgresActivityLogStore implements store.ActivityLogStore on PostgreSQL.
type PostgresActivityLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ActivityLogStore = (*PostgresActivityLogStore)(nil)

// NewPostgresActivityLogStore creates an activity log store on db.
func NewPostgresActivityLogStore(db store.DBTX, logger *slog.Logger) *PostgresActivityLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_log_store")),
	}
}

// Append implements store.ActivityLogStore.
func (s *PostgresActivityLogStore) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	md := entry.Metadata
	if md == nil {
		md = map[string]any{}
	}
	metadata, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("%w: metadata: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO activity_logs (id, agent_name, user_id, course_id, log_level, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.AgentName,
		entry.UserID,
		nullUUID(entry.CourseID),
		string(entry.LogLevel),
		entry.Message,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append activity log",
			slog.String("agent", entry.AgentName),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}
