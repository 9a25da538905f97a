package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/events"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"github.com/phrazzld/coursegen-api/internal/lease"
	"github.com/phrazzld/coursegen-api/internal/pipeline"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// Lease defaults used when the factory is given none.
const (
	defaultLeaseTTL     = 2 * time.Minute
	leaseReleaseTimeout = 5 * time.Second
)

// courseGenerationPayload represents the serialized data of the task
type courseGenerationPayload struct {
	JobID    uuid.UUID `json:"job_id"`
	CourseID uuid.UUID `json:"course_id"`
}

// CourseGenerationTask drives one generation job from pending to a terminal
// state. Its ID is the job ID, so a job is queued at most once per process.
type CourseGenerationTask struct {
	jobID    uuid.UUID
	courseID uuid.UUID
	creds    generation.Credentials
	deps     *Dependencies
	logger   *slog.Logger
}

var _ Task = (*CourseGenerationTask)(nil)

// ID returns the job ID.
func (t *CourseGenerationTask) ID() uuid.UUID {
	return t.jobID
}

// Type returns the task type identifier
func (t *CourseGenerationTask) Type() string {
	return TaskTypeCourseGeneration
}

// Payload returns the job and course IDs as JSON. Credentials are never
// included.
func (t *CourseGenerationTask) Payload() []byte {
	data, err := json.Marshal(courseGenerationPayload{JobID: t.jobID, CourseID: t.courseID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", slog.String("error", err.Error()))
		return []byte{}
	}
	return data
}

// CourseID returns the course the task generates.
func (t *CourseGenerationTask) CourseID() uuid.UUID {
	return t.courseID
}

// Execute runs the job. It returns ErrRunInProgress without touching the job
// when another run holds the course lease, and ErrRunInterrupted when ctx is
// cancelled mid-run. Any stage failure marks the job failed and is returned.
func (t *CourseGenerationTask) Execute(ctx context.Context) error {
	d := t.deps
	log := t.logger

	held, err := d.Locker.Acquire(ctx, lease.CourseKey(t.courseID.String()), d.LeaseTTL)
	if err != nil {
		if errors.Is(err, lease.ErrHeld) {
			log.Info("course lease held by another run, skipping")
			return fmt.Errorf("%w: course %s", ErrRunInProgress, t.courseID)
		}
		return fmt.Errorf("failed to acquire course lease: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopKeepAlive := t.keepAlive(runCtx, held, cancel)
	defer func() {
		stopKeepAlive()
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), leaseReleaseTimeout)
		defer releaseCancel()
		if err := held.Release(releaseCtx); err != nil {
			log.Warn("failed to release course lease", slog.String("error", err.Error()))
		}
	}()

	return t.run(runCtx, log)
}

func (t *CourseGenerationTask) run(ctx context.Context, log *slog.Logger) error {
	d := t.deps
	s := d.Stores.Stores()

	job, err := s.Jobs.GetByID(ctx, t.jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job.IsTerminal() {
		log.Info("job already finished, nothing to do", slog.String("status", string(job.Status)))
		return nil
	}

	course, err := s.Courses.GetByID(ctx, t.courseID)
	if err != nil {
		return t.fail(ctx, log, job, fmt.Errorf("failed to load course: %w", err))
	}

	resumed := job.Status == domain.JobStatusProcessing
	if err := job.Start(d.now()); err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	if err := s.Jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}
	t.emit(ctx, job)

	if resumed {
		log.Info("resuming generation", slog.Int("progress", job.ProgressPercentage))
		t.activity(ctx, course, domain.LogLevelInfo, "Resumed course generation", map[string]any{
			"job_id":   job.ID.String(),
			"progress": job.ProgressPercentage,
		})
	} else {
		log.Info("starting generation")
		t.activity(ctx, course, domain.LogLevelInfo, "Started course generation", map[string]any{
			"job_id":      job.ID.String(),
			"course_name": course.Title,
		})
	}

	gen, err := d.Resolver.Resolve(ctx, t.creds)
	if err != nil {
		return t.fail(ctx, log, job, fmt.Errorf("failed to prepare content generator: %w", err))
	}

	jc := &pipeline.JobContext{
		JobID:      job.ID,
		CourseID:   course.ID,
		UserID:     course.UserID,
		CourseName: course.Title,
		Purpose:    course.Purpose,
		Difficulty: course.Difficulty,
		Generator:  gen,
		Stores:     d.Stores,
		Logger:     log,
	}

	// staged holds the job state written by the open stage transaction; it
	// becomes the current state only once that transaction commits.
	var staged domain.Job
	counts := make(map[string]any)
	hooks := pipeline.Hooks{
		Checkpoint: func(ctx context.Context, tx store.Stores, r pipeline.Result) error {
			staged = *job
			if r.Final() {
				if err := staged.Complete(domain.StepCompleted, d.now()); err != nil {
					return err
				}
				if _, err := tx.Courses.Publish(ctx, course.ID); err != nil {
					return fmt.Errorf("failed to publish course: %w", err)
				}
			} else if err := staged.Advance(r.Progress, r.Step, d.now()); err != nil {
				return err
			}
			return tx.Jobs.Update(ctx, &staged)
		},
		Committed: func(ctx context.Context, r pipeline.Result) {
			*job = staged
			counts[string(r.Kind)] = r.Count
			t.emit(ctx, job)
		},
	}

	err = d.Pipeline.Run(ctx, jc, job.ProgressPercentage, hooks)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, pipeline.ErrStageTimeout) {
			log.Warn("generation interrupted", slog.Int("progress", job.ProgressPercentage))
			return fmt.Errorf("%w: %v", ErrRunInterrupted, err)
		}
		return t.fail(ctx, log, job, err)
	}

	counts["job_id"] = job.ID.String()
	log.Info("generation completed")
	t.activity(ctx, course, domain.LogLevelInfo, "Course generation completed", counts)
	return nil
}

// fail records cause on the job. The course is left untouched, so it stays
// a draft.
func (t *CourseGenerationTask) fail(ctx context.Context, log *slog.Logger, job *domain.Job, cause error) error {
	s := t.deps.Stores.Stores()
	log.Error("generation failed",
		slog.Int("progress", job.ProgressPercentage),
		slog.String("error", cause.Error()))

	failed := *job
	if err := failed.Fail(cause.Error(), t.deps.now()); err != nil {
		return errors.Join(cause, err)
	}
	if err := s.Jobs.Update(ctx, &failed); err != nil {
		log.Error("failed to mark job failed", slog.String("error", err.Error()))
		return errors.Join(cause, fmt.Errorf("failed to mark job failed: %w", err))
	}
	*job = failed
	t.emit(ctx, job)

	metadata := map[string]any{
		"job_id":   job.ID.String(),
		"progress": job.ProgressPercentage,
		"error":    cause.Error(),
	}
	var stageErr *pipeline.StageError
	if errors.As(cause, &stageErr) {
		metadata["stage"] = string(stageErr.Kind)
	}
	t.activityFor(ctx, job.UserID, domain.LogLevelError, "Course generation failed", metadata)
	return cause
}

func (t *CourseGenerationTask) emit(ctx context.Context, job *domain.Job) {
	if t.deps.Events == nil {
		return
	}
	if err := t.deps.Events.EmitEvent(ctx, events.NewJobEvent(job)); err != nil {
		t.logger.Warn("failed to emit job event",
			slog.Int("progress", job.ProgressPercentage),
			slog.String("error", err.Error()))
	}
}

func (t *CourseGenerationTask) activity(
	ctx context.Context,
	course *domain.Course,
	level domain.LogLevel,
	message string,
	metadata map[string]any,
) {
	t.activityFor(ctx, course.UserID, level, message, metadata)
}

// activityFor appends an activity entry. The log is best effort: a failed
// append is reported and otherwise ignored.
func (t *CourseGenerationTask) activityFor(
	ctx context.Context,
	userID uuid.UUID,
	level domain.LogLevel,
	message string,
	metadata map[string]any,
) {
	courseID := t.courseID
	entry, err := domain.NewActivityLogEntry(domain.AgentCourseGenerator, userID, &courseID, level, message, metadata)
	if err == nil {
		err = t.deps.Stores.Stores().Activity.Append(ctx, entry)
	}
	if err != nil {
		t.logger.Warn("failed to append activity log entry",
			slog.String("message", message),
			slog.String("error", err.Error()))
	}
}

// keepAlive refreshes the lease every third of its TTL until the returned
// stop function is called. Losing the lease cancels the run.
func (t *CourseGenerationTask) keepAlive(ctx context.Context, held lease.Lease, cancel context.CancelFunc) func() {
	ttl := t.deps.LeaseTTL
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := held.Refresh(ctx, ttl); err != nil {
					if ctx.Err() != nil {
						return
					}
					t.logger.Error("lost course lease, stopping run", slog.String("error", err.Error()))
					cancel()
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
