package evolve

import (
	"errors"
	"fmt"
)

// ErrUnstableStep indicates a time step outside the scheme's stability
// bound.
var ErrUnstableStep = errors.New("evolve: unstable time step")

// UnstableStepError carries the offending step and its Courant number.
type UnstableStepError struct {
	Dt      float64
	Courant float64
}

func (e *UnstableStepError) Error() string {
	return fmt.Sprintf("evolve: unstable time step dt=%g (courant %.3f > %.3f)", e.Dt, e.Courant, CFLLimit)
}

func (e *UnstableStepError) Unwrap() error { return ErrUnstableStep }
