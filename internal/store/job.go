package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// JobStore persists generation jobs.
type JobStore interface {
	// Create inserts a job. Returns ErrJobExists when the course already has one.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID returns the job or ErrJobNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// GetByCourseID returns the course's job or ErrJobNotFound.
	GetByCourseID(ctx context.Context, courseID uuid.UUID) (*domain.Job, error)

	// Update writes status, progress, step, error and completion time. The
	// write is rejected with ErrJobConflict when the stored job is already
	// terminal or its stored progress is higher than job's.
	Update(ctx context.Context, job *domain.Job) error

	// ListByStatus returns jobs in any of the given statuses, oldest first.
	ListByStatus(ctx context.Context, statuses ...domain.JobStatus) ([]*domain.Job, error)

	// ListStale returns pending and processing jobs not updated for at least
	// olderThan.
	ListStale(ctx context.Context, olderThan time.Duration) ([]*domain.Job, error)
}
