package fluid

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrNonFinite indicates a field drifted to NaN/Inf and was reset.
	ErrNonFinite = errors.New("fluid: non-finite field values detected")

	// ErrBadResolution indicates a resolution change that could not be
	// allocated; the previous grid stays active.
	ErrBadResolution = errors.New("fluid: resolution change rejected")
)

// StepError carries the tick and stage where a step went wrong.
type StepError struct {
	Tick    uint64
	Stage   string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Stage, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
