package forcefield

import (
	"errors"
	"fmt"
)

// Setup errors. All of them abort assembly; nothing is registered.
var (
	// ErrInvalidParams indicates a physically invalid parameter value.
	ErrInvalidParams = errors.New("forcefield: invalid parameters")

	// ErrIndexOutOfRange indicates a chain or bond referring to a particle
	// outside the system.
	ErrIndexOutOfRange = errors.New("forcefield: particle index out of range")

	// ErrOverlappingChains indicates two chains sharing particles.
	ErrOverlappingChains = errors.New("forcefield: chains overlap")

	// ErrNeighborDistance indicates a non-positive neighbor cutoff distance.
	ErrNeighborDistance = errors.New("forcefield: neighbor distance must be positive")

	// ErrViewSize indicates a compartment view whose length differs from the
	// particle count of the system.
	ErrViewSize = errors.New("forcefield: compartment view does not match system size")

	// ErrAlreadyAssembled indicates a second Assemble call.
	ErrAlreadyAssembled = errors.New("forcefield: already assembled")
)

// SetupError wraps a failure with the name of the builder that raised it.
type SetupError struct {
	Builder string
	Err     error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("forcefield setup (%s): %v", e.Builder, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
