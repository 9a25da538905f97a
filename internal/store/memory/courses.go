package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

type courseStore struct{ v *view }

var _ store.CourseStore = (*courseStore)(nil)

func (c *courseStore) Create(ctx context.Context, course *domain.Course) error {
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return c.v.with(func(st *state) error {
		if _, exists := st.courses[course.ID]; exists {
			return fmt.Errorf("%w: course %s", store.ErrDuplicate, course.ID)
		}
		st.courses[course.ID] = copyCourse(*course)
		return nil
	})
}

func (c *courseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var out domain.Course
	err := c.v.with(func(st *state) error {
		course, ok := st.courses[id]
		if !ok {
			return store.ErrCourseNotFound
		}
		out = copyCourse(course)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *courseStore) AttachJob(ctx context.Context, courseID, jobID uuid.UUID) error {
	return c.v.with(func(st *state) error {
		course, ok := st.courses[courseID]
		if !ok {
			return store.ErrCourseNotFound
		}
		if err := course.AttachJob(jobID); err != nil {
			return err
		}
		st.courses[courseID] = course
		return nil
	})
}

func (c *courseStore) Publish(ctx context.Context, courseID uuid.UUID) (bool, error) {
	var changed bool
	err := c.v.with(func(st *state) error {
		course, ok := st.courses[courseID]
		if !ok {
			return store.ErrCourseNotFound
		}
		changed = course.Publish()
		if changed {
			st.courses[courseID] = course
		}
		return nil
	})
	return changed, err
}

func copyCourse(c domain.Course) domain.Course {
	if c.GenerationJobID != nil {
		id := *c.GenerationJobID
		c.GenerationJobID = &id
	}
	return c
}
