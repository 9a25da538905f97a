package task

import "errors"

// Task errors.
var (
	// ErrRunInProgress is returned when another run holds the course lease.
	ErrRunInProgress = errors.New("a generation run for this course is already in progress")

	// ErrRunInterrupted is returned when a run stops because its context was
	// cancelled or its lease was lost. The job stays processing and resumes
	// from its last checkpoint.
	ErrRunInterrupted = errors.New("generation run interrupted")

	// ErrTaskInFlight is returned by Submit when the task is already queued
	// or running in this process.
	ErrTaskInFlight = errors.New("task already queued or running")

	ErrNilStores   = errors.New("stores cannot be nil")
	ErrNilLocker   = errors.New("locker cannot be nil")
	ErrNilPipeline = errors.New("pipeline cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
	ErrEmptyJobID  = errors.New("job ID cannot be empty")
	ErrEmptyCourse = errors.New("course ID cannot be empty")
)
