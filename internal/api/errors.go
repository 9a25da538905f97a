package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/coursegen-api/internal/api/shared"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/service"
	"github.com/phrazzld/coursegen-api/internal/service/auth"
	"github.com/phrazzld/coursegen-api/internal/store"
	"github.com/phrazzld/coursegen-api/internal/task"
)

// ErrUnauthenticated is returned when a handler runs without an authenticated user.
var ErrUnauthenticated = errors.New("user not authenticated")

// ErrUserMismatch is returned when a request body names a different user than the token.
var ErrUserMismatch = errors.New("request user does not match authenticated user")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, ErrUserMismatch):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrCourseNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// The run could not be queued; the client may retry later
	case errors.Is(err, service.ErrDispatchFailed) &&
		(errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed)):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, ErrUserMismatch):
		return "userId does not match the authenticated user"
	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return "Generation job not found"

	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrDispatchFailed):
		return "Course generation could not be started, please retry later"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage returns the innermost domain validation message, e.g.
// "validation failed: invalid difficulty". Domain validation messages never
// carry user data.
func validationMessage(err error) string {
	msg := domain.ErrValidation.Error()
	var walk func(e error)
	walk = func(e error) {
		if e == nil || e == domain.ErrValidation || !errors.Is(e, domain.ErrValidation) {
			return
		}
		msg = e.Error()
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return msg
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a UUID"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status and safe message and writes the error
// response. When message is non-empty it replaces the mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
