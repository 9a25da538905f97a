package pipeline

import (
	"errors"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/domain"
)

// ErrStageTimeout is returned when a stage does not finish within its budget.
var ErrStageTimeout = errors.New("stage timed out")

// StageError reports which stage stopped a run.
type StageError struct {
	Kind domain.ArtifactKind
	Err  error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying stage failure.
func (e *StageError) Unwrap() error {
	return e.Err
}
