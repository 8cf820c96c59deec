package md

import (
	"errors"
	"fmt"
)

// Domain errors for forcefield evaluation.
var (
	// ErrIndexOutOfRange indicates a bonded pair or target referring to a
	// particle the system does not have.
	ErrIndexOutOfRange = errors.New("md: particle index out of range")

	// ErrNeighborDistance indicates a non-positive neighbor cutoff distance.
	ErrNeighborDistance = errors.New("md: neighbor distance must be positive")

	// ErrForceBuffer indicates a force buffer whose length differs from the
	// particle count.
	ErrForceBuffer = errors.New("md: force buffer size mismatch")
)

// EvaluationError wraps an error raised by one registered forcefield.
type EvaluationError struct {
	Index   int
	Kind    Kind
	Wrapped error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("forcefield %d (%s): %v", e.Index, e.Kind, e.Wrapped)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}
