package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the state of a generation job.
type JobStatus string

// Job statuses. Completed and failed are terminal.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions may follow s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// IsValid reports whether s is a known job status.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// JobTypeCourseGeneration identifies the course content pipeline.
const JobTypeCourseGeneration = "course_generation"

// Fixed progress values reported outside the per-stage checkpoints.
const (
	ProgressQueued   = 0
	ProgressStarted  = 10
	ProgressComplete = 100
)

// Step descriptions written by the job lifecycle itself.
const (
	StepQueued    = "Queued for generation"
	StepStarting  = "Starting course generation"
	StepCompleted = "Course generation completed"
	StepFailed    = "Course generation failed"
)

// Metadata keys recorded from the original request.
const (
	MetadataCourseName = "course_name"
	MetadataPurpose    = "purpose"
	MetadataDifficulty = "difficulty"
)

// Job errors.
var (
	ErrEmptyJobID          = fmt.Errorf("%w: job ID cannot be empty", ErrValidation)
	ErrEmptyJobCourseID    = fmt.Errorf("%w: job course ID cannot be empty", ErrValidation)
	ErrEmptyJobUserID      = fmt.Errorf("%w: job user ID cannot be empty", ErrValidation)
	ErrInvalidJobStatus    = fmt.Errorf("%w: invalid job status", ErrValidation)
	ErrInvalidProgress     = fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
	ErrJobTerminal         = fmt.Errorf("%w: job already finished", ErrInvalidTransition)
	ErrJobNotProcessing    = fmt.Errorf("%w: job is not processing", ErrInvalidTransition)
	ErrProgressRegression  = fmt.Errorf("%w: progress cannot decrease", ErrInvalidTransition)
	ErrProgressNeedsFinish = fmt.Errorf("%w: progress reaches 100 only on completion", ErrInvalidTransition)
)

// Job tracks one run of the course generation pipeline.
type Job struct {
	ID                 uuid.UUID         `json:"id"`
	CourseID           uuid.UUID         `json:"course_id"`
	UserID             uuid.UUID         `json:"user_id"`
	Status             JobStatus         `json:"status"`
	JobType            string            `json:"job_type"`
	ProgressPercentage int               `json:"progress_percentage"`
	CurrentStep        string            `json:"current_step"`
	ErrorMessage       string            `json:"error_message,omitempty"`
	Metadata           map[string]string `json:"metadata"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
}

// NewJob creates a pending generation job for the course.
func NewJob(courseID, userID uuid.UUID, metadata map[string]string) (*Job, error) {
	now := time.Now().UTC()
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	job := &Job{
		ID:                 uuid.New(),
		CourseID:           courseID,
		UserID:             userID,
		Status:             JobStatusPending,
		JobType:            JobTypeCourseGeneration,
		ProgressPercentage: ProgressQueued,
		CurrentStep:        StepQueued,
		Metadata:           md,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// CourseJobMetadata captures the generation request on the job record.
func CourseJobMetadata(courseName string, purpose CoursePurpose, difficulty Difficulty) map[string]string {
	return map[string]string{
		MetadataCourseName: courseName,
		MetadataPurpose:    string(purpose),
		MetadataDifficulty: string(difficulty),
	}
}

// Validate checks that the job fields are well formed.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}
	if j.CourseID == uuid.Nil {
		return ErrEmptyJobCourseID
	}
	if j.UserID == uuid.Nil {
		return ErrEmptyJobUserID
	}
	if !j.Status.IsValid() {
		return ErrInvalidJobStatus
	}
	if j.ProgressPercentage < 0 || j.ProgressPercentage > ProgressComplete {
		return ErrInvalidProgress
	}
	return nil
}

// IsTerminal reports whether the job has finished.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Start moves the job into processing. Starting an already processing job is
// allowed so an interrupted run can resume; progress is never lowered.
func (j *Job) Start(now time.Time) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	j.Status = JobStatusProcessing
	if j.ProgressPercentage < ProgressStarted {
		j.ProgressPercentage = ProgressStarted
		j.CurrentStep = StepStarting
	}
	j.UpdatedAt = now.UTC()
	return nil
}

// Advance records a stage checkpoint. Checkpoints must not decrease, and 100
// is reserved for Complete.
func (j *Job) Advance(progress int, step string, now time.Time) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if j.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}
	if progress < 0 || progress > ProgressComplete {
		return ErrInvalidProgress
	}
	if progress >= ProgressComplete {
		return ErrProgressNeedsFinish
	}
	if progress < j.ProgressPercentage {
		return ErrProgressRegression
	}
	j.ProgressPercentage = progress
	j.CurrentStep = step
	j.UpdatedAt = now.UTC()
	return nil
}

// Complete finishes the job successfully at 100%.
func (j *Job) Complete(step string, now time.Time) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if j.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}
	if strings.TrimSpace(step) == "" {
		step = StepCompleted
	}
	ts := now.UTC()
	j.Status = JobStatusCompleted
	j.ProgressPercentage = ProgressComplete
	j.CurrentStep = step
	j.ErrorMessage = ""
	j.UpdatedAt = ts
	j.CompletedAt = &ts
	return nil
}

// Fail finishes the job unsuccessfully. Progress stays at the last checkpoint.
func (j *Job) Fail(message string, now time.Time) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if strings.TrimSpace(message) == "" {
		message = "unknown error"
	}
	ts := now.UTC()
	j.Status = JobStatusFailed
	j.CurrentStep = StepFailed
	j.ErrorMessage = message
	j.UpdatedAt = ts
	j.CompletedAt = &ts
	return nil
}
