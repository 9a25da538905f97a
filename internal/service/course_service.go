package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// CreateCourseInput describes a new draft course.
type CreateCourseInput struct {
	UserID     uuid.UUID
	Title      string
	Purpose    domain.CoursePurpose
	Difficulty domain.Difficulty
}

// CourseView is a course together with how much content it holds.
type CourseView struct {
	Course *domain.Course
	Counts store.ArtifactCounts
}

// CourseService manages course records.
type CourseService interface {
	// CreateDraft validates input and stores a draft course.
	CreateDraft(ctx context.Context, input CreateCourseInput) (*domain.Course, error)

	// AttachJob links the course to its generation job. The link is written
	// once; a different job returns domain.ErrJobAlreadyAttached.
	AttachJob(ctx context.Context, courseID, jobID uuid.UUID) error

	// Publish marks the course published. Publishing an already published
	// course is a no-op.
	Publish(ctx context.Context, courseID uuid.UUID) error

	// GetCourse returns the course and its artifact counts. It returns
	// ErrNotOwned when the course belongs to another user.
	GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*CourseView, error)
}

type courseServiceImpl struct {
	stores store.UnitOfWork
	logger *slog.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(stores store.UnitOfWork, logger *slog.Logger) (CourseService, error) {
	if stores == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "stores cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &courseServiceImpl{
		stores: stores,
		logger: logger.With("component", "course_service"),
	}, nil
}

func (s *courseServiceImpl) CreateDraft(ctx context.Context, input CreateCourseInput) (*domain.Course, error) {
	course, err := createDraft(ctx, s.stores.Stores(), input)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to create draft course",
			slog.String("user_id", input.UserID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("create_course", "failed to create draft course", err)
	}
	return course, nil
}

func (s *courseServiceImpl) AttachJob(ctx context.Context, courseID, jobID uuid.UUID) error {
	if err := s.stores.Stores().Courses.AttachJob(ctx, courseID, jobID); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyAttached) {
			return err
		}
		return NewServiceError("attach_job", "failed to link generation job", err)
	}
	return nil
}

func (s *courseServiceImpl) Publish(ctx context.Context, courseID uuid.UUID) error {
	changed, err := s.stores.Stores().Courses.Publish(ctx, courseID)
	if err != nil {
		return NewServiceError("publish_course", "failed to publish course", err)
	}
	if !changed {
		logger.FromContextOrDefault(ctx, s.logger).Debug("course already published",
			slog.String("course_id", courseID.String()))
	}
	return nil
}

func (s *courseServiceImpl) GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*CourseView, error) {
	stores := s.stores.Stores()

	course, err := stores.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, NewServiceError("get_course", "failed to load course", err)
	}
	if course.UserID != userID {
		return nil, ErrNotOwned
	}

	counts, err := stores.Artifacts.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, NewServiceError("get_course", "failed to count course content", err)
	}
	return &CourseView{Course: course, Counts: counts}, nil
}

// createDraft stores a new draft course through s, which may be bound to a
// transaction.
func createDraft(ctx context.Context, s store.Stores, input CreateCourseInput) (*domain.Course, error) {
	course, err := domain.NewCourse(input.UserID, input.Title, input.Purpose, input.Difficulty)
	if err != nil {
		return nil, err
	}
	if err := s.Courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}
