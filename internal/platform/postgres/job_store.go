package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
)

const jobColumns = `id, course_id, user_id, status, job_type, progress_percentage, current_step,
		error_message, metadata, created_at, updated_at, completed_at`

// PostgresJobStore implements store.JobStore on PostgreSQL.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.JobStore = (*PostgresJobStore)(nil)

// NewPostgresJobStore creates a job store on db.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Create implements store.JobStore.
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("invalid job", slog.String("job_id", job.ID.String()), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	metadata, err := json.Marshal(metadataOrEmpty(job.Metadata))
	if err != nil {
		return fmt.Errorf("%w: metadata: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO generation_jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.CourseID,
		job.UserID,
		string(job.Status),
		job.JobType,
		job.ProgressPercentage,
		job.CurrentStep,
		nullString(job.ErrorMessage),
		metadata,
		job.CreatedAt,
		job.UpdatedAt,
		nullTime(job.CompletedAt),
	)
	if err != nil {
		if violatesConstraint(err, constraintJobPerCourse) {
			log.Warn("course already has a job",
				slog.String("job_id", job.ID.String()),
				slog.String("course_id", job.CourseID.String()))
			return MapUniqueViolation(err, store.ErrJobExists)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrCourseNotFound, err)
		}
		log.Error("failed to insert job",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.JobStore.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByCourseID implements store.JobStore.
func (s *PostgresJobStore) GetByCourseID(ctx context.Context, courseID uuid.UUID) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE course_id = $1`
	return s.getOne(ctx, query, courseID)
}

func (s *PostgresJobStore) getOne(ctx context.Context, query string, arg uuid.UUID) (*domain.Job, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load job",
			slog.String("key", arg.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return job, nil
}

// Update implements store.JobStore. The WHERE clause carries the terminal and
// progress guards so a stale writer cannot overwrite a newer state.
func (s *PostgresJobStore) Update(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("job_id", job.ID.String()))

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE generation_jobs
		SET status = $2, progress_percentage = $3, current_step = $4, error_message = $5,
			updated_at = $6, completed_at = $7
		WHERE id = $1
			AND status NOT IN ('completed', 'failed')
			AND progress_percentage <= $3
	`
	result, err := s.db.ExecContext(ctx, query,
		job.ID,
		string(job.Status),
		job.ProgressPercentage,
		job.CurrentStep,
		nullString(job.ErrorMessage),
		job.UpdatedAt,
		nullTime(job.CompletedAt),
	)
	if err != nil {
		log.Error("failed to update job", slog.String("error", err.Error()))
		return MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	current, err := s.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	log.Warn("rejected stale job update",
		slog.String("stored_status", string(current.Status)),
		slog.Int("stored_progress", current.ProgressPercentage),
		slog.Int("progress", job.ProgressPercentage))
	return store.ErrJobConflict
}

// ListByStatus implements store.JobStore.
func (s *PostgresJobStore) ListByStatus(ctx context.Context, statuses ...domain.JobStatus) ([]*domain.Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, st := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(st)
	}

	query := `SELECT ` + jobColumns + ` FROM generation_jobs
		WHERE status IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at ASC`
	return s.list(ctx, query, args...)
}

// ListStale implements store.JobStore.
func (s *PostgresJobStore) ListStale(ctx context.Context, olderThan time.Duration) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs
		WHERE status IN ($1, $2) AND updated_at <= $3
		ORDER BY updated_at ASC`
	return s.list(ctx, query,
		string(domain.JobStatusPending),
		string(domain.JobStatusProcessing),
		time.Now().UTC().Add(-olderThan))
}

func (s *PostgresJobStore) list(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating job rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job          domain.Job
		status       string
		errorMessage sql.NullString
		metadata     []byte
		completedAt  sql.NullTime
	)
	if err := row.Scan(
		&job.ID,
		&job.CourseID,
		&job.UserID,
		&status,
		&job.JobType,
		&job.ProgressPercentage,
		&job.CurrentStep,
		&errorMessage,
		&metadata,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	job.ErrorMessage = errorMessage.String
	job.Metadata = map[string]string{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode job metadata: %w", err)
		}
	}
	if completedAt.Valid {
		ts := completedAt.Time.UTC()
		job.CompletedAt = &ts
	}
	return &job, nil
}

func metadataOrEmpty(md map[string]string) map[string]string {
	if md == nil {
		return map[string]string{}
	}
	return md
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
