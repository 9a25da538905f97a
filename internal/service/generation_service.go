package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
	"github.com/phrazzld/coursegen-api/internal/task"
)

// TaskRunner defines the interface for submitting background tasks
type TaskRunner interface {
	// Submit adds a task to the processing queue without blocking
	Submit(ctx context.Context, task task.Task) error
}

// CourseGenerationTaskFactory creates CourseGenerationTask instances
type CourseGenerationTaskFactory interface {
	CreateTask(jobID, courseID uuid.UUID, creds generation.Credentials) (*task.CourseGenerationTask, error)
}

// GenerateCourseRequest is one "generate a course on X" trigger.
type GenerateCourseRequest struct {
	UserID     uuid.UUID
	CourseName string
	Purpose    domain.CoursePurpose
	Difficulty domain.Difficulty

	// Credentials select the caller's own content provider for this run.
	// They are never persisted.
	Credentials generation.Credentials
}

// GenerationResult identifies the records created for a request.
type GenerationResult struct {
	CourseID uuid.UUID
	JobID    uuid.UUID
}

// GenerationService accepts generation requests.
type GenerationService interface {
	// StartGeneration creates a draft course and a pending job, links them,
	// and dispatches the run. It returns as soon as the run is queued.
	//
	// Validation failures return an error wrapping domain.ErrValidation and
	// create nothing. When the run cannot be queued the job is marked failed
	// and ErrDispatchFailed is returned.
	StartGeneration(ctx context.Context, req GenerateCourseRequest) (*GenerationResult, error)
}

type generationServiceImpl struct {
	stores  store.UnitOfWork
	runner  TaskRunner
	factory CourseGenerationTaskFactory
	logger  *slog.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	stores store.UnitOfWork,
	runner TaskRunner,
	factory CourseGenerationTaskFactory,
	logger *slog.Logger,
) (GenerationService, error) {
	if stores == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "stores cannot be nil"}
	}
	if runner == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskRunner cannot be nil"}
	}
	if factory == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskFactory cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &generationServiceImpl{
		stores:  stores,
		runner:  runner,
		factory: factory,
		logger:  logger.With("component", "generation_service"),
	}, nil
}

func (s *generationServiceImpl) StartGeneration(
	ctx context.Context,
	req GenerateCourseRequest,
) (*GenerationResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", req.UserID.String()))

	var (
		course *domain.Course
		job    *domain.Job
	)
	err := s.stores.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		course, err = createDraft(ctx, tx, CreateCourseInput{
			UserID:     req.UserID,
			Title:      req.CourseName,
			Purpose:    req.Purpose,
			Difficulty: req.Difficulty,
		})
		if err != nil {
			return err
		}

		job, err = domain.NewJob(course.ID, course.UserID,
			domain.CourseJobMetadata(course.Title, course.Purpose, course.Difficulty))
		if err != nil {
			return err
		}
		if err := tx.Jobs.Create(ctx, job); err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		if err := tx.Courses.AttachJob(ctx, course.ID, job.ID); err != nil {
			return fmt.Errorf("failed to link job: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			log.Debug("rejected generation request", slog.String("error", err.Error()))
		} else {
			log.Error("failed to create course and job", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("start_generation", "failed to create course and job", err)
	}

	log = log.With(slog.String("course_id", course.ID.String()), slog.String("job_id", job.ID.String()))
	log.Info("course and job created", slog.String("course_name", course.Title))

	t, err := s.factory.CreateTask(job.ID, course.ID, req.Credentials)
	if err == nil {
		err = s.runner.Submit(ctx, t)
	}
	if errors.Is(err, task.ErrTaskInFlight) {
		// Recovery queued the job first.
		log.Info("generation job already queued")
		err = nil
	}
	if err != nil {
		log.Error("failed to dispatch generation job", slog.String("error", err.Error()))
		s.failUndispatched(ctx, log, job, err)
		return nil, &ServiceError{
			Operation: "start_generation",
			Message:   "failed to queue generation run",
			Err:       errors.Join(ErrDispatchFailed, err),
		}
	}

	log.Info("generation job dispatched")
	return &GenerationResult{CourseID: course.ID, JobID: job.ID}, nil
}

// failUndispatched records a dispatch failure on the job so it never looks
// queued. A run picked up by recovery in the meantime wins the update.
func (s *generationServiceImpl) failUndispatched(ctx context.Context, log *slog.Logger, job *domain.Job, cause error) {
	failed := *job
	if err := failed.Fail(fmt.Sprintf("failed to dispatch generation job: %v", cause), time.Now()); err != nil {
		return
	}
	if err := s.stores.Stores().Jobs.Update(ctx, &failed); err != nil {
		log.Error("failed to mark undispatched job failed", slog.String("error", err.Error()))
	}
}
