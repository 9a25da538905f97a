package pipeline

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// JobContext is everything a stage needs for one run. It is built by the job
// controller and passed explicitly to every stage.
type JobContext struct {
	JobID      uuid.UUID
	CourseID   uuid.UUID
	UserID     uuid.UUID
	CourseName string
	Purpose    domain.CoursePurpose
	Difficulty domain.Difficulty

	Generator generation.ContentGenerator
	Stores    store.UnitOfWork
	Logger    *slog.Logger
}

// Validate checks that the context can drive a run.
func (jc *JobContext) Validate() error {
	switch {
	case jc.JobID == uuid.Nil:
		return errors.New("job context: job ID is required")
	case jc.CourseID == uuid.Nil:
		return errors.New("job context: course ID is required")
	case jc.Generator == nil:
		return errors.New("job context: generator is required")
	case jc.Stores == nil:
		return errors.New("job context: stores are required")
	}
	return nil
}

// Brief is the generator's view of the course.
func (jc *JobContext) Brief() generation.CourseBrief {
	return generation.CourseBrief{
		CourseID:   jc.CourseID,
		Title:      jc.CourseName,
		Purpose:    jc.Purpose,
		Difficulty: jc.Difficulty,
	}
}

func (jc *JobContext) logger() *slog.Logger {
	if jc.Logger == nil {
		return slog.Default()
	}
	return jc.Logger
}
