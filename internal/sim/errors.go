package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnstable indicates a moment became NaN or Inf.
	ErrUnstable = errors.New("sim: simulation unstable (moment diverged)")

	// ErrUnknownMoment indicates a moment name that no scheme conserves.
	ErrUnknownMoment = errors.New("sim: unknown conserved moment")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("sim: simulation canceled by context")

	// ErrBoundary indicates a boundary method that cannot be applied to a scheme.
	ErrBoundary = errors.New("sim: invalid boundary condition")
)

// StepError wraps an error with the step at which it happened.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
