package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/coursegen-api/internal/api/shared"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/service"
)

// DefaultKeepAliveInterval is how often an idle event stream sends a comment line.
const DefaultKeepAliveInterval = 15 * time.Second

// errStreamingUnsupported is returned when the response writer cannot flush.
var errStreamingUnsupported = errors.New("response writer does not support streaming")

// JobHandler serves generation job progress.
type JobHandler struct {
	jobs       service.JobService
	subscriber events.Subscriber
	logger     *slog.Logger

	// KeepAlive is the idle interval between comment lines on event streams.
	KeepAlive time.Duration
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobs service.JobService, subscriber events.Subscriber, logger *slog.Logger) *JobHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for JobHandler")
	}
	return &JobHandler{
		jobs:       jobs,
		subscriber: subscriber,
		logger:     logger.With(slog.String("component", "job_handler")),
		KeepAlive:  DefaultKeepAliveInterval,
	}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(r.Context(), userID, jobID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// StreamJobEvents handles GET /api/jobs/{id}/events. It sends the current job
// state, then one event per persisted change, and ends after the job reaches
// a terminal status or the client goes away.
func (h *JobHandler) StreamJobEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	// Ownership is checked before subscribing.
	if _, err := h.jobs.GetJob(r.Context(), userID, jobID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		HandleAPIError(w, r, errStreamingUnsupported, "Streaming not supported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before taking the snapshot so no change falls between them.
	updates, err := h.subscriber.Subscribe(ctx, jobID)
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("subscribe to job events: %w", err), "Event stream unavailable")
		return
	}
	snapshot, err := h.jobs.GetJob(ctx, userID, jobID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	last := progressFromView(snapshot)
	if err := writeEvent(w, last); err != nil {
		return
	}
	flusher.Flush()
	if last.Status.IsTerminal() {
		return
	}

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAliveInterval
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-updates:
			if !open {
				log.Debug("job event stream closed", slog.String("job_id", jobID.String()))
				return
			}
			// Events older than the snapshot are skipped.
			if ev.ProgressPercentage < last.ProgressPercentage && !ev.IsTerminal() {
				continue
			}
			last = progressFromEvent(ev)
			if err := writeEvent(w, last); err != nil {
				log.Debug("client left job event stream", slog.String("error", err.Error()))
				return
			}
			flusher.Flush()
			if ev.IsTerminal() {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, ev JobProgressEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
	return err
}
