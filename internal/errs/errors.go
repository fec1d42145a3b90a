// Package errs defines the error kinds surfaced by the visibility pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap these with fmt.Errorf("...: %w", ErrX) so
// callers can still errors.Is against the kind.
var (
	// ErrInvalidInput is returned when the pipeline's inputs fail validation:
	// negative cell size, empty terrain grid, too few rays, non-finite
	// configuration values, a negative field-of-view floor, and so on.
	ErrInvalidInput = errors.New("highpoint: invalid input")

	// ErrCancelled is returned when the cooperative cancellation point
	// between pipeline stages (or, within the tracer, between candidates)
	// observes a cancelled context.
	ErrCancelled = errors.New("highpoint: cancelled")

	// ErrInternal marks an invariant violation, such as a NaN elevation
	// surviving bilinear interpolation. Always fatal.
	ErrInternal = errors.New("highpoint: internal invariant violated")
)

// Stage identifies which pipeline stage produced zero survivors.
type Stage string

const (
	StageCandidates  Stage = "candidates"
	StageVisibility  Stage = "visibility"
	StageCluster     Stage = "cluster"
	StageDrivability Stage = "drivability"
)

// EmptyPipelineError is a non-fatal outcome: the pipeline ran to completion
// but the named stage produced zero survivors. It is not an error state in
// the traditional sense (the orchestrator returns it alongside an empty
// result so callers can render a friendly message), but it satisfies the
// error interface so it composes with errors.As/errors.Is.
type EmptyPipelineError struct {
	Stage Stage
}

func (e *EmptyPipelineError) Error() string {
	return fmt.Sprintf("highpoint: pipeline emptied at stage %q", e.Stage)
}

// NewEmptyPipeline constructs an EmptyPipelineError for the given stage.
func NewEmptyPipeline(stage Stage) *EmptyPipelineError {
	return &EmptyPipelineError{Stage: stage}
}

// Invalid wraps msg as an ErrInvalidInput.
func Invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}

// Invalidf wraps a formatted message as an ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// Internal wraps msg as an ErrInternal.
func Internal(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}
