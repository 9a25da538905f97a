package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// JobEvent is a snapshot of a generation job taken right after a state change
// was persisted.
type JobEvent struct {
	ID                 uuid.UUID        `json:"id"`
	JobID              uuid.UUID        `json:"job_id"`
	CourseID           uuid.UUID        `json:"course_id"`
	Status             domain.JobStatus `json:"status"`
	ProgressPercentage int              `json:"progress_percentage"`
	CurrentStep        string           `json:"current_step"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	OccurredAt         time.Time        `json:"occurred_at"`
}

// NewJobEvent captures the current state of job.
func NewJobEvent(job *domain.Job) *JobEvent {
	return &JobEvent{
		ID:                 uuid.New(),
		JobID:              job.ID,
		CourseID:           job.CourseID,
		Status:             job.Status,
		ProgressPercentage: job.ProgressPercentage,
		CurrentStep:        job.CurrentStep,
		ErrorMessage:       job.ErrorMessage,
		OccurredAt:         time.Now().UTC(),
	}
}

// IsTerminal reports whether no further events follow for the job.
func (e *JobEvent) IsTerminal() bool {
	return e.Status.IsTerminal()
}

// EventEmitter publishes job events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *JobEvent) error
}

// Subscriber streams the events of a single job. The returned channel is
// closed when ctx is done or the underlying transport ends.
type Subscriber interface {
	Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan *JobEvent, error)
}

// Bus is both ends of the event stream.
type Bus interface {
	EventEmitter
	Subscriber
}
