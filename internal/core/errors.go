package core

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and stepping.
var (
	// ErrInvalidConfig indicates a non-positive temperature, timestep,
	// step count or callback interval.
	ErrInvalidConfig = errors.New("core: invalid configuration")

	// ErrEmptySystem indicates a system with no particles.
	ErrEmptySystem = errors.New("core: system has no particles")

	// ErrZeroMass indicates a system whose total mass is zero.
	ErrZeroMass = errors.New("core: system has zero total mass")

	// ErrDiverged indicates the integrator produced non-finite
	// positions, velocities or energies.
	ErrDiverged = errors.New("core: numerical divergence (NaN or Inf)")

	// ErrDriverSpent indicates a driver in a terminal state was asked
	// to run again.
	ErrDriverSpent = errors.New("core: driver already ran, build a new one to run again")

	// ErrStepOrder indicates a trajectory append with a step index not
	// greater than the last written record.
	ErrStepOrder = errors.New("core: trajectory steps must be strictly increasing")
)

// StepError wraps an error with the 1-based step at which it occurred.
type StepError struct {
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
