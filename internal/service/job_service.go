package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// JobView is the progress read model returned to clients.
type JobView struct {
	ID                 uuid.UUID        `json:"id"`
	CourseID           uuid.UUID        `json:"courseId"`
	Status             domain.JobStatus `json:"status"`
	ProgressPercentage int              `json:"progressPercentage"`
	CurrentStep        string           `json:"currentStep"`
	ErrorMessage       string           `json:"errorMessage,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
}

// NewJobView projects job onto the read model.
func NewJobView(job *domain.Job) *JobView {
	return &JobView{
		ID:                 job.ID,
		CourseID:           job.CourseID,
		Status:             job.Status,
		ProgressPercentage: job.ProgressPercentage,
		CurrentStep:        job.CurrentStep,
		ErrorMessage:       job.ErrorMessage,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
		CompletedAt:        job.CompletedAt,
	}
}

// JobService reads generation jobs on behalf of their owner.
type JobService interface {
	// GetJob returns the job with jobID.
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobView, error)

	// GetJobForCourse returns the job generating courseID.
	GetJobForCourse(ctx context.Context, userID, courseID uuid.UUID) (*JobView, error)
}

type jobServiceImpl struct {
	stores store.UnitOfWork
	logger *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(stores store.UnitOfWork, logger *slog.Logger) (JobService, error) {
	if stores == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "stores cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &jobServiceImpl{
		stores: stores,
		logger: logger.With("component", "job_service"),
	}, nil
}

func (s *jobServiceImpl) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobView, error) {
	job, err := s.stores.Stores().Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewServiceError("get_job", "failed to load job", err)
	}
	return ownedJob(job, userID)
}

func (s *jobServiceImpl) GetJobForCourse(ctx context.Context, userID, courseID uuid.UUID) (*JobView, error) {
	job, err := s.stores.Stores().Jobs.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, NewServiceError("get_course_job", "failed to load job", err)
	}
	return ownedJob(job, userID)
}

func ownedJob(job *domain.Job, userID uuid.UUID) (*JobView, error) {
	if job.UserID != userID {
		return nil, ErrNotOwned
	}
	return NewJobView(job), nil
}
