package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/api/shared"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/service"
)

// CourseHandler handles course generation and course reads.
type CourseHandler struct {
	generation service.GenerationService
	courses    service.CourseService
	jobs       service.JobService
	logger     *slog.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(
	generationService service.GenerationService,
	courseService service.CourseService,
	jobService service.JobService,
	logger *slog.Logger,
) *CourseHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CourseHandler")
	}
	return &CourseHandler{
		generation: generationService,
		courses:    courseService,
		jobs:       jobService,
		logger:     logger.With(slog.String("component", "course_handler")),
	}
}

// GenerateCourse handles POST /api/courses/generate. It answers 202 as soon
// as the course and job exist and the run is queued.
func (h *CourseHandler) GenerateCourse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, ErrUnauthenticated, "")
		return
	}

	var req GenerateCourseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	if req.UserID != "" && uuid.MustParse(req.UserID) != userID {
		HandleAPIError(w, r, ErrUserMismatch, "")
		return
	}

	var creds generation.Credentials
	if req.ProviderCredentials != nil {
		creds.GeminiAPIKey = req.ProviderCredentials.GeminiAPIKey
	}

	result, err := h.generation.StartGeneration(r.Context(), service.GenerateCourseRequest{
		UserID:      userID,
		CourseName:  req.CourseName,
		Purpose:     domain.CoursePurpose(req.Purpose),
		Difficulty:  domain.Difficulty(req.Difficulty),
		Credentials: creds,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("course generation accepted",
		slog.String("course_id", result.CourseID.String()),
		slog.String("job_id", result.JobID.String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateCourseResponse{
		Success:  true,
		CourseID: result.CourseID,
		JobID:    result.JobID,
		Message:  "Course generation started",
	})
}

// GetCourse handles GET /api/courses/{id}.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, courseID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.courses.GetCourse(r.Context(), userID, courseID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newCourseResponse(view))
}

// GetCourseJob handles GET /api/courses/{id}/job.
func (h *CourseHandler) GetCourseJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, courseID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	job, err := h.jobs.GetJobForCourse(r.Context(), userID, courseID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}
