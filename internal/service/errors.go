package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to HTTP statuses.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer should map this to 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrCourseNotFound indicates the course does not exist. API layer should
	// map this to 404 Not Found.
	ErrCourseNotFound = errors.New("course not found")

	// ErrJobNotFound indicates the generation job does not exist.
	ErrJobNotFound = errors.New("generation job not found")

	// ErrDispatchFailed indicates the course and job were created but the run
	// could not be queued. The job is marked failed.
	ErrDispatchFailed = errors.New("failed to dispatch generation job")
)

// ServiceError wraps errors from the services with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "start_generation")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err for operation. Not-found store errors are
// translated to the service sentinels, and validation errors are returned
// unwrapped so their message reaches the caller intact.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, store.ErrCourseNotFound):
		return ErrCourseNotFound
	case errors.Is(err, ErrJobNotFound), errors.Is(err, store.ErrJobNotFound):
		return ErrJobNotFound
	case errors.Is(err, ErrNotOwned):
		return ErrNotOwned
	case errors.Is(err, domain.ErrValidation):
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
