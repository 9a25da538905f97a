package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// PostgresCourseStore implements store.CourseStore on PostgreSQL.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// NewPostgresCourseStore creates a course store on db, which may be a pool or
// a transaction.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// Create implements store.CourseStore.
func (s *PostgresCourseStore) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("invalid course", slog.String("course_id", course.ID.String()), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO courses (id, user_id, title, purpose, difficulty, status, generation_job_id, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		course.ID,
		course.UserID,
		course.Title,
		string(course.Purpose),
		string(course.Difficulty),
		string(course.Status),
		nullUUID(course.GenerationJobID),
		course.Summary,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert course",
			slog.String("course_id", course.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("course created", slog.String("course_id", course.ID.String()))
	return nil
}

// GetByID implements store.CourseStore.
func (s *PostgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `
		SELECT id, user_id, title, purpose, difficulty, status, generation_job_id, summary, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	var (
		course                      domain.Course
		purpose, difficulty, status string
		jobID                       uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.UserID,
		&course.Title,
		&purpose,
		&difficulty,
		&status,
		&jobID,
		&course.Summary,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCourseNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load course",
			slog.String("course_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	course.Purpose = domain.CoursePurpose(purpose)
	course.Difficulty = domain.Difficulty(difficulty)
	course.Status = domain.CourseStatus(status)
	if jobID.Valid {
		id := jobID.UUID
		course.GenerationJobID = &id
	}
	return &course, nil
}

// AttachJob implements store.CourseStore.
func (s *PostgresCourseStore) AttachJob(ctx context.Context, courseID, jobID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE courses
		SET generation_job_id = $2, updated_at = $3
		WHERE id = $1 AND (generation_job_id IS NULL OR generation_job_id = $2)
	`
	result, err := s.db.ExecContext(ctx, query, courseID, jobID, time.Now().UTC())
	if err != nil {
		log.Error("failed to attach job",
			slog.String("course_id", courseID.String()),
			slog.String("job_id", jobID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetByID(ctx, courseID); err != nil {
		return err
	}
	log.Warn("course already has a different job",
		slog.String("course_id", courseID.String()),
		slog.String("job_id", jobID.String()))
	return domain.ErrJobAlreadyAttached
}

// Publish implements store.CourseStore.
func (s *PostgresCourseStore) Publish(ctx context.Context, courseID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE courses
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		courseID,
		string(domain.CourseStatusPublished),
		time.Now().UTC(),
		string(domain.CourseStatusDraft),
	)
	if err != nil {
		log.Error("failed to publish course",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return false, MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	if n > 0 {
		log.Info("course published", slog.String("course_id", courseID.String()))
		return true, nil
	}

	// Nothing changed: either already published or missing.
	if _, err := s.GetByID(ctx, courseID); err != nil {
		return false, err
	}
	return false, nil
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
