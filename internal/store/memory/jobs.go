package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

type jobStore struct{ v *view }

var _ store.JobStore = (*jobStore)(nil)

func (j *jobStore) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return j.v.with(func(st *state) error {
		if _, ok := st.courses[job.CourseID]; !ok {
			return fmt.Errorf("%w: job references unknown course", store.ErrInvalidEntity)
		}
		if _, exists := st.jobByCourse[job.CourseID]; exists {
			return store.ErrJobExists
		}
		if _, exists := st.jobs[job.ID]; exists {
			return fmt.Errorf("%w: job %s", store.ErrDuplicate, job.ID)
		}
		st.jobs[job.ID] = copyJob(*job)
		st.jobByCourse[job.CourseID] = job.ID
		st.jobSequence = append(st.jobSequence, job.ID)
		return nil
	})
}

func (j *jobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var out domain.Job
	err := j.v.with(func(st *state) error {
		job, ok := st.jobs[id]
		if !ok {
			return store.ErrJobNotFound
		}
		out = copyJob(job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (j *jobStore) GetByCourseID(ctx context.Context, courseID uuid.UUID) (*domain.Job, error) {
	var out domain.Job
	err := j.v.with(func(st *state) error {
		id, ok := st.jobByCourse[courseID]
		if !ok {
			return store.ErrJobNotFound
		}
		out = copyJob(st.jobs[id])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (j *jobStore) Update(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return j.v.with(func(st *state) error {
		current, ok := st.jobs[job.ID]
		if !ok {
			return store.ErrJobNotFound
		}
		if current.IsTerminal() || current.ProgressPercentage > job.ProgressPercentage {
			return store.ErrJobConflict
		}
		current.Status = job.Status
		current.ProgressPercentage = job.ProgressPercentage
		current.CurrentStep = job.CurrentStep
		current.ErrorMessage = job.ErrorMessage
		current.CompletedAt = copyTime(job.CompletedAt)
		current.UpdatedAt = job.UpdatedAt
		st.jobs[job.ID] = current
		return nil
	})
}

func (j *jobStore) ListByStatus(ctx context.Context, statuses ...domain.JobStatus) ([]*domain.Job, error) {
	want := make(map[domain.JobStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []*domain.Job
	err := j.v.with(func(st *state) error {
		for _, id := range st.jobSequence {
			job := st.jobs[id]
			if want[job.Status] {
				c := copyJob(job)
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (j *jobStore) ListStale(ctx context.Context, olderThan time.Duration) ([]*domain.Job, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []*domain.Job
	err := j.v.with(func(st *state) error {
		for _, id := range st.jobSequence {
			job := st.jobs[id]
			if !job.IsTerminal() && !job.UpdatedAt.After(cutoff) {
				c := copyJob(job)
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func copyJob(j domain.Job) domain.Job {
	md := make(map[string]string, len(j.Metadata))
	for k, v := range j.Metadata {
		md[k] = v
	}
	j.Metadata = md
	j.CompletedAt = copyTime(j.CompletedAt)
	return j
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
