package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogLevel is the severity of an activity log entry.
type LogLevel string

// Activity log levels.
const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// AgentCourseGenerator is the agent name used for pipeline entries.
const AgentCourseGenerator = "course_generator"

// Activity log validation errors.
var (
	ErrEmptyAgentName    = fmt.Errorf("%w: agent name cannot be empty", ErrValidation)
	ErrEmptyActivityUser = fmt.Errorf("%w: activity user ID cannot be empty", ErrValidation)
	ErrEmptyActivityMsg  = fmt.Errorf("%w: activity message cannot be empty", ErrValidation)
	ErrInvalidLogLevel   = fmt.Errorf("%w: invalid log level", ErrValidation)
)

// ActivityLogEntry is an append-only structured event about a user's course.
type ActivityLogEntry struct {
	ID        uuid.UUID      `json:"id"`
	AgentName string         `json:"agent_name"`
	UserID    uuid.UUID      `json:"user_id"`
	CourseID  *uuid.UUID     `json:"course_id,omitempty"`
	LogLevel  LogLevel       `json:"log_level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewActivityLogEntry creates a validated entry. courseID may be nil.
func NewActivityLogEntry(
	agent string,
	userID uuid.UUID,
	courseID *uuid.UUID,
	level LogLevel,
	message string,
	metadata map[string]any,
) (*ActivityLogEntry, error) {
	e := &ActivityLogEntry{
		ID:        uuid.New(),
		AgentName: strings.TrimSpace(agent),
		UserID:    userID,
		CourseID:  courseID,
		LogLevel:  level,
		Message:   strings.TrimSpace(message),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the entry fields.
func (e *ActivityLogEntry) Validate() error {
	if e.AgentName == "" {
		return ErrEmptyAgentName
	}
	if e.UserID == uuid.Nil {
		return ErrEmptyActivityUser
	}
	if e.Message == "" {
		return ErrEmptyActivityMsg
	}
	switch e.LogLevel {
	case LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
