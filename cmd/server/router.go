package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/coursegen-api/internal/api"
	apiMiddleware "github.com/phrazzld/coursegen-api/internal/api/middleware"
	"github.com/phrazzld/coursegen-api/internal/api/shared"
)

// setupRouter creates the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	courseHandler := api.NewCourseHandler(app.generationService, app.courseService, app.jobService, app.logger)
	jobHandler := api.NewJobHandler(app.jobService, app.bus, app.logger)

	var limiter apiMiddleware.RateLimiter
	if app.limiter != nil {
		limiter = app.limiter
	}
	generateLimit := apiMiddleware.RateLimit(limiter, "generate", app.config.Server.GenerateLimitPerHour, time.Hour)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.With(generateLimit).Post("/courses/generate", courseHandler.GenerateCourse)
		r.Get("/courses/{id}", courseHandler.GetCourse)
		r.Get("/courses/{id}/job", courseHandler.GetCourseJob)

		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Get("/jobs/{id}/events", jobHandler.StreamJobEvents)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return r
}
