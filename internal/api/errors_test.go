package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/coursegen-api/internal/api/shared"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/service"
	"github.com/phrazzld/coursegen-api/internal/service/auth"
	"github.com/phrazzld/coursegen-api/internal/store"
	"github.com/phrazzld/coursegen-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchErr(cause error) error {
	return &service.ServiceError{
		Operation: "start_generation",
		Message:   "failed to queue generation run",
		Err:       errors.Join(service.ErrDispatchFailed, cause),
	}
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped token error", fmt.Errorf("authenticate: %w", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"user mismatch", ErrUserMismatch, http.StatusForbidden},
		{"course not found", service.ErrCourseNotFound, http.StatusNotFound},
		{"store job not found", store.ErrJobNotFound, http.StatusNotFound},
		{"domain validation", domain.ErrInvalidDifficulty, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"queue full", dispatchErr(task.ErrQueueFull), http.StatusServiceUnavailable},
		{"queue closed", dispatchErr(task.ErrQueueClosed), http.StatusServiceUnavailable},
		{"other dispatch failure", dispatchErr(errors.New("boom")), http.StatusInternalServerError},
		{"unknown error", errors.New("unknown error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"not owned", service.ErrNotOwned, "You do not have access to this resource"},
		{"course not found", fmt.Errorf("load: %w", store.ErrCourseNotFound), "Course not found"},
		{"job not found", service.ErrJobNotFound, "Generation job not found"},
		{"domain validation", domain.ErrInvalidPurpose, "validation failed: invalid course purpose"},
		{
			"wrapped domain validation",
			fmt.Errorf("create course: %w", domain.ErrEmptyCourseTitle),
			"validation failed: course title cannot be empty",
		},
		{
			"store rejection of an invalid entity",
			fmt.Errorf("create course: %w", fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyCourseTitle)),
			"validation failed: course title cannot be empty",
		},
		{"bare validation", domain.ErrValidation, "validation failed"},
		{"dispatch", dispatchErr(task.ErrQueueFull), "Course generation could not be started, please retry later"},
		{
			"unknown error keeps details private",
			errors.New("pq: password authentication failed for user admin"),
			"An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		req      GenerateCourseRequest
		expected string
	}{
		{
			name:     "missing course name",
			req:      GenerateCourseRequest{Purpose: "exam", Difficulty: "beginner"},
			expected: "Invalid courseName: required field",
		},
		{
			name:     "unknown purpose",
			req:      GenerateCourseRequest{CourseName: "Graphs", Purpose: "fun", Difficulty: "beginner"},
			expected: "Invalid purpose: invalid value",
		},
		{
			name: "malformed user id",
			req: GenerateCourseRequest{
				CourseName: "Graphs", Purpose: "exam", Difficulty: "beginner", UserID: "42",
			},
			expected: "Invalid userId: must be a UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shared.ValidateRequest(&tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.expected, SanitizeValidationError(err))
		})
	}

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
