package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Entity-specific errors below wrap it so callers can match either.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a lifecycle change is not legal
	// from the entity's current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
