package pipeline

import (
	"context"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// Progress checkpoints recorded after each stage commits.
const (
	CheckpointChapters   = 40
	CheckpointFlashcards = 60
	CheckpointMCQs       = 80
	CheckpointQnAs       = 90
	CheckpointNotebook   = 95
	CheckpointResources  = domain.ProgressComplete
)

// Result describes a committed stage.
type Result struct {
	Kind     domain.ArtifactKind
	Count    int
	Progress int
	Step     string
}

// Final reports whether r is the last checkpoint of a run.
func (r Result) Final() bool {
	return r.Progress >= domain.ProgressComplete
}

// CheckpointFunc runs inside a stage's write transaction after its artifacts
// are stored. Returning an error rolls the whole stage back.
type CheckpointFunc func(ctx context.Context, tx store.Stores, r Result) error

// batch is one stage's validated records and the single write that stores them.
type batch struct {
	count int
	step  string
	write func(ctx context.Context, artifacts store.ArtifactStore) error
}

type produceFunc func(ctx context.Context, jc *JobContext) (batch, error)

// Stage produces one artifact kind.
type Stage struct {
	Kind       domain.ArtifactKind
	Checkpoint int
	produce    produceFunc
}

// Run generates the stage's content and writes it in one transaction together
// with checkpoint. Nothing is written if either fails.
func (s Stage) Run(ctx context.Context, jc *JobContext, checkpoint CheckpointFunc) (Result, error) {
	b, err := s.produce(ctx, jc)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r := Result{Kind: s.Kind, Count: b.count, Progress: s.Checkpoint, Step: b.step}
	err = jc.Stores.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := b.write(ctx, tx.Artifacts); err != nil {
			return fmt.Errorf("failed to store %s: %w", s.Kind, err)
		}
		if checkpoint != nil {
			return checkpoint(ctx, tx, r)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return r, nil
}

// DefaultStages returns the six stages in run order.
func DefaultStages() []Stage {
	return []Stage{
		{Kind: domain.ArtifactChapters, Checkpoint: CheckpointChapters, produce: produceChapters},
		{Kind: domain.ArtifactFlashcards, Checkpoint: CheckpointFlashcards, produce: produceFlashcards},
		{Kind: domain.ArtifactMCQs, Checkpoint: CheckpointMCQs, produce: produceMCQs},
		{Kind: domain.ArtifactQnAs, Checkpoint: CheckpointQnAs, produce: produceQnAs},
		{Kind: domain.ArtifactNotebook, Checkpoint: CheckpointNotebook, produce: produceNotebook},
		{Kind: domain.ArtifactResources, Checkpoint: CheckpointResources, produce: produceResources},
	}
}
