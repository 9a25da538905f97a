package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Hooks let the job controller observe a run.
type Hooks struct {
	// Checkpoint runs inside each stage's write transaction.
	Checkpoint CheckpointFunc
	// Committed runs after a stage's transaction has committed.
	Committed func(ctx context.Context, r Result)
}

// Pipeline runs stages strictly in order.
type Pipeline struct {
	stages       []Stage
	stageTimeout time.Duration
}

// New returns a pipeline over stages, or over DefaultStages when none are
// given. A zero stageTimeout disables the per-stage deadline.
func New(stageTimeout time.Duration, stages ...Stage) *Pipeline {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Pipeline{stages: stages, stageTimeout: stageTimeout}
}

// Stages returns the pipeline's stages in run order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes every stage whose checkpoint is above resumeFrom. It stops at
// the first failing stage and returns a *StageError; later stages do not run.
func (p *Pipeline) Run(ctx context.Context, jc *JobContext, resumeFrom int, hooks Hooks) error {
	if err := jc.Validate(); err != nil {
		return err
	}
	log := jc.logger()

	for _, stage := range p.stages {
		if stage.Checkpoint <= resumeFrom {
			log.DebugContext(ctx, "skipping committed stage",
				slog.String("stage", string(stage.Kind)),
				slog.Int("checkpoint", stage.Checkpoint))
			continue
		}

		start := time.Now()
		r, err := p.runStage(ctx, jc, stage, hooks.Checkpoint)
		if err != nil {
			log.ErrorContext(ctx, "stage failed",
				slog.String("stage", string(stage.Kind)),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()))
			return &StageError{Kind: stage.Kind, Err: err}
		}

		log.InfoContext(ctx, "stage committed",
			slog.String("stage", string(stage.Kind)),
			slog.Int("count", r.Count),
			slog.Int("progress", r.Progress),
			slog.Duration("elapsed", time.Since(start)))

		if hooks.Committed != nil {
			hooks.Committed(ctx, r)
		}
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, jc *JobContext, stage Stage, checkpoint CheckpointFunc) (Result, error) {
	if p.stageTimeout <= 0 {
		return stage.Run(ctx, jc, checkpoint)
	}

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	r, err := stage.Run(sctx, jc, checkpoint)
	if err != nil && ctx.Err() == nil && errors.Is(sctx.Err(), context.DeadlineExceeded) {
		return Result{}, fmt.Errorf("%w after %s: %v", ErrStageTimeout, p.stageTimeout, err)
	}
	return r, err
}
