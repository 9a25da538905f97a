package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/service"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// ProviderCredentials lets a caller run generation on their own provider account.
type ProviderCredentials struct {
	GeminiAPIKey string `json:"geminiApiKey" validate:"omitempty,min=20,max=200"`
}

// GenerateCourseRequest defines the payload for the course generation endpoint.
type GenerateCourseRequest struct {
	CourseName string `json:"courseName" validate:"required,max=200"`
	Purpose    string `json:"purpose"    validate:"required,oneof=exam job_interview practice coding_preparation other"`
	Difficulty string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced expert"`

	// UserID is optional. When present it must match the authenticated user.
	UserID string `json:"userId,omitempty" validate:"omitempty,uuid"`

	ProviderCredentials *ProviderCredentials `json:"providerCredentials,omitempty"`
}

// GenerateCourseResponse is returned once the generation job is queued.
type GenerateCourseResponse struct {
	Success  bool      `json:"success"`
	CourseID uuid.UUID `json:"courseId"`
	JobID    uuid.UUID `json:"jobId"`
	Message  string    `json:"message"`
}

// CourseResponse represents a course and how much generated content it holds.
type CourseResponse struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Summary         string               `json:"summary"`
	Purpose         domain.CoursePurpose `json:"purpose"`
	Difficulty      domain.Difficulty    `json:"difficulty"`
	Status          domain.CourseStatus  `json:"status"`
	GenerationJobID *uuid.UUID           `json:"generationJobId,omitempty"`
	Counts          store.ArtifactCounts `json:"counts"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func newCourseResponse(view *service.CourseView) CourseResponse {
	c := view.Course
	return CourseResponse{
		ID:              c.ID,
		Title:           c.Title,
		Summary:         c.Summary,
		Purpose:         c.Purpose,
		Difficulty:      c.Difficulty,
		Status:          c.Status,
		GenerationJobID: c.GenerationJobID,
		Counts:          view.Counts,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// JobProgressEvent is one server-sent progress update.
type JobProgressEvent struct {
	JobID              uuid.UUID        `json:"jobId"`
	CourseID           uuid.UUID        `json:"courseId"`
	Status             domain.JobStatus `json:"status"`
	ProgressPercentage int              `json:"progressPercentage"`
	CurrentStep        string           `json:"currentStep"`
	ErrorMessage       string           `json:"errorMessage,omitempty"`
	OccurredAt         time.Time        `json:"occurredAt"`
}

func progressFromView(v *service.JobView) JobProgressEvent {
	return JobProgressEvent{
		JobID:              v.ID,
		CourseID:           v.CourseID,
		Status:             v.Status,
		ProgressPercentage: v.ProgressPercentage,
		CurrentStep:        v.CurrentStep,
		ErrorMessage:       v.ErrorMessage,
		OccurredAt:         v.UpdatedAt,
	}
}

func progressFromEvent(e *events.JobEvent) JobProgressEvent {
	return JobProgressEvent{
		JobID:              e.JobID,
		CourseID:           e.CourseID,
		Status:             e.Status,
		ProgressPercentage: e.ProgressPercentage,
		CurrentStep:        e.CurrentStep,
		ErrorMessage:       e.ErrorMessage,
		OccurredAt:         e.OccurredAt,
	}
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
