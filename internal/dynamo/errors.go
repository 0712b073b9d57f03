package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates parameters rejected at construction.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrCoreOverlap indicates two particles closer than the forbidden core
	// radius of their force law. The state is unphysical and must not be
	// integrated further.
	ErrCoreOverlap = errors.New("dynamo: particles inside forbidden core radius")

	// ErrInvalidState indicates a particle position or velocity with NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrPoolClosed indicates a parallel pass was requested after Close.
	ErrPoolClosed = errors.New("dynamo: worker pool closed")
)

// PairError describes a force evaluation that left the domain of the force law.
type PairError struct {
	Position Vector3
	Other    Vector3
	Distance float64
	Wrapped  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%v: distance %.6g nm between %v and %v", e.Wrapped, e.Distance, e.Position, e.Other)
}

func (e *PairError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with the step it occurred on.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
