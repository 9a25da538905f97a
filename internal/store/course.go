package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// CourseStore persists courses and owns their two pipeline transitions.
type CourseStore interface {
	// Create inserts a new course. Returns ErrInvalidEntity if validation fails.
	Create(ctx context.Context, course *domain.Course) error

	// GetByID returns the course or ErrCourseNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// AttachJob sets generation_job_id once. Re-attaching the same job is a
	// no-op; a different job returns domain.ErrJobAlreadyAttached.
	AttachJob(ctx context.Context, courseID, jobID uuid.UUID) error

	// Publish moves a draft course to published and reports whether the row
	// changed. Publishing an already published course returns false, nil.
	Publish(ctx context.Context, courseID uuid.UUID) (bool, error)
}
