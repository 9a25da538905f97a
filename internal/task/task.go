package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// TaskTypeCourseGeneration identifies course generation tasks.
const TaskTypeCourseGeneration = domain.JobTypeCourseGeneration

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// Recoverer rebuilds tasks from persisted job state.
type Recoverer interface {
	// UnfinishedTasks returns tasks for every pending or processing job.
	UnfinishedTasks(ctx context.Context) ([]Task, error)

	// StuckTasks returns tasks for processing jobs whose last update is
	// older than olderThan.
	StuckTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)
}
