package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/lease"
	"github.com/phrazzld/coursegen-api/internal/pipeline"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// Dependencies are shared by every CourseGenerationTask.
type Dependencies struct {
	Stores   store.UnitOfWork
	Resolver generation.Resolver
	Locker   lease.Locker
	Pipeline *pipeline.Pipeline

	// Events is optional.
	Events events.EventEmitter

	// LeaseTTL defaults to two minutes.
	LeaseTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// CourseGenerationTaskFactory creates CourseGenerationTask instances and
// rebuilds them from stored jobs.
type CourseGenerationTaskFactory struct {
	deps   *Dependencies
	logger *slog.Logger
}

var _ Recoverer = (*CourseGenerationTaskFactory)(nil)

// NewCourseGenerationTaskFactory validates deps and returns a factory.
func NewCourseGenerationTaskFactory(deps Dependencies, logger *slog.Logger) (*CourseGenerationTaskFactory, error) {
	if deps.Stores == nil {
		return nil, ErrNilStores
	}
	if deps.Locker == nil {
		return nil, ErrNilLocker
	}
	if deps.Pipeline == nil {
		return nil, ErrNilPipeline
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if deps.LeaseTTL <= 0 {
		deps.LeaseTTL = defaultLeaseTTL
	}

	return &CourseGenerationTaskFactory{
		deps:   &deps,
		logger: logger.With(slog.String("component", "course_generation_task_factory")),
	}, nil
}

// CreateTask creates a task for job. creds are kept in memory for this run
// only; a task rebuilt after a restart uses the default generator.
func (f *CourseGenerationTaskFactory) CreateTask(
	jobID, courseID uuid.UUID,
	creds generation.Credentials,
) (*CourseGenerationTask, error) {
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}
	if courseID == uuid.Nil {
		return nil, ErrEmptyCourse
	}

	return &CourseGenerationTask{
		jobID:    jobID,
		courseID: courseID,
		creds:    creds,
		deps:     f.deps,
		logger: f.logger.With(
			slog.String("task_type", TaskTypeCourseGeneration),
			slog.String("job_id", jobID.String()),
			slog.String("course_id", courseID.String()),
		),
	}, nil
}

// UnfinishedTasks implements Recoverer.
func (f *CourseGenerationTaskFactory) UnfinishedTasks(ctx context.Context) ([]Task, error) {
	jobs, err := f.deps.Stores.Stores().Jobs.ListByStatus(ctx, domain.JobStatusPending, domain.JobStatusProcessing)
	if err != nil {
		return nil, err
	}
	return f.tasksFor(jobs)
}

// StuckTasks implements Recoverer.
func (f *CourseGenerationTaskFactory) StuckTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	jobs, err := f.deps.Stores.Stores().Jobs.ListStale(ctx, olderThan)
	if err != nil {
		return nil, err
	}
	return f.tasksFor(jobs)
}

func (f *CourseGenerationTaskFactory) tasksFor(jobs []*domain.Job) ([]Task, error) {
	tasks := make([]Task, 0, len(jobs))
	for _, job := range jobs {
		if job.JobType != TaskTypeCourseGeneration {
			continue
		}
		t, err := f.CreateTask(job.ID, job.CourseID, generation.Credentials{})
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild task for job %s: %w", job.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
