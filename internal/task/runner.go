package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a job can go without a progress update
	// before it is considered stuck and requeued
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	recoverer Recoverer
	queue     *TaskQueue
	pool      *WorkerPool
	config    TaskRunnerConfig
	logger    *slog.Logger

	inflightMu sync.Mutex
	inflight   map[uuid.UUID]struct{}

	monitorCancel context.CancelFunc
	monitorWG     sync.WaitGroup
	stopOnce      sync.Once
}

// NewTaskRunner creates a new TaskRunner. recoverer may be nil, in which
// case nothing is recovered and stuck jobs are not monitored.
func NewTaskRunner(recoverer Recoverer, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	logger = logger.With(slog.String("component", "task_runner"))

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	return &TaskRunner{
		recoverer: recoverer,
		queue:     queue,
		pool:      pool,
		config:    config,
		logger:    logger,
		inflight:  make(map[uuid.UUID]struct{}),
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit adds a task to the queue without blocking. It returns
// ErrTaskInFlight when a task with the same ID is already queued or running,
// and ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if !r.claim(task.ID()) {
		return fmt.Errorf("%w: %s", ErrTaskInFlight, task.ID())
	}

	if err := r.queue.Enqueue(&trackedTask{Task: task, done: func() { r.release(task.ID()) }}); err != nil {
		r.release(task.ID())
		return err
	}
	return nil
}

// InFlight reports whether a task with id is queued or running.
func (r *TaskRunner) InFlight(id uuid.UUID) bool {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	_, ok := r.inflight[id]
	return ok
}

func (r *TaskRunner) claim(id uuid.UUID) bool {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	if _, ok := r.inflight[id]; ok {
		return false
	}
	r.inflight[id] = struct{}{}
	return true
}

func (r *TaskRunner) release(id uuid.UUID) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	delete(r.inflight, id)
}

// trackedTask clears the runner's in-flight mark when execution ends.
type trackedTask struct {
	Task
	done func()
}

func (t *trackedTask) Execute(ctx context.Context) error {
	defer t.done()
	return t.Task.Execute(ctx)
}

// Start starts the workers, recovers unfinished jobs, then starts the stuck
// job monitor. Jobs that do not fit in the queue during recovery are picked up
// by the monitor once they are older than StuckTaskAge.
func (r *TaskRunner) Start(ctx context.Context) error {
	r.pool.Start()

	if err := r.Recover(ctx); err != nil {
		r.Stop()
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	r.monitorCancel = cancel
	if r.recoverer != nil && r.config.StuckTaskAge > 0 {
		r.monitorWG.Add(1)
		go r.stuckTaskMonitor(monitorCtx)
	}

	r.logger.Info("task runner started",
		slog.Int("worker_count", r.config.WorkerCount),
		slog.Int("queue_size", r.config.QueueSize))
	return nil
}

// Stop gracefully shuts down the task runner. Running tasks see their context
// cancelled; their jobs resume on the next start.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		if r.monitorCancel != nil {
			r.monitorCancel()
		}
		r.monitorWG.Wait()
		r.queue.Close()
		r.pool.Stop()
		r.logger.Info("task runner stopped")
	})
}

// Run starts the runner, blocks until ctx is done, then stops it.
func (r *TaskRunner) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}

// Recover requeues tasks for every unfinished job.
func (r *TaskRunner) Recover(ctx context.Context) error {
	if r.recoverer == nil {
		return nil
	}

	tasks, err := r.recoverer.UnfinishedTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unfinished jobs: %w", err)
	}

	r.logger.Info("recovering unfinished tasks", slog.Int("count", len(tasks)))
	r.requeue(ctx, tasks, "recovered")
	return nil
}

func (r *TaskRunner) requeue(ctx context.Context, tasks []Task, reason string) {
	for _, task := range tasks {
		err := r.Submit(ctx, task)
		switch {
		case err == nil:
			r.logger.Info("requeued task",
				slog.String("task_id", task.ID().String()),
				slog.String("reason", reason))
		case errors.Is(err, ErrTaskInFlight):
			r.logger.Debug("task already in flight",
				slog.String("task_id", task.ID().String()))
		case errors.Is(err, ErrQueueFull):
			r.logger.Warn("queue full, task left for the stuck job monitor",
				slog.String("task_id", task.ID().String()),
				slog.String("reason", reason))
		default:
			r.logger.Error("failed to requeue task",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.String("error", err.Error()))
		}
	}
}

// stuckTaskMonitor periodically requeues unfinished jobs that stopped
// reporting progress, including pending jobs that never reached a worker. A job still owned by a live run elsewhere is protected
// by its course lease, so requeueing it is harmless.
func (r *TaskRunner) stuckTaskMonitor(ctx context.Context) {
	defer r.monitorWG.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			stuck, err := r.recoverer.StuckTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", slog.String("error", err.Error()))
				continue
			}
			if len(stuck) > 0 {
				r.logger.Info("found stuck tasks", slog.Int("count", len(stuck)))
				r.requeue(ctx, stuck, "stuck")
			}
		}
	}
}
