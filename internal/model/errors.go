package model

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates an array input whose shape disagrees
	// with the grid. Always fatal at construction; never broadcast.
	ErrShapeMismatch = errors.New("model: array shape does not match grid")

	// ErrNoBed indicates a missing bed elevation source.
	ErrNoBed = errors.New("model: bed elevation source required")

	// ErrNoInitialConditions indicates missing initial thickness.
	ErrNoInitialConditions = errors.New("model: initial conditions required")

	// ErrNonFiniteBed indicates NaN or Inf in the resolved bed array.
	ErrNonFiniteBed = errors.New("model: bed elevation must be finite everywhere")

	// ErrNegativeInitialThickness indicates h < 0 in a thickness input.
	ErrNegativeInitialThickness = errors.New("model: initial thickness must be non-negative")
)

// ShapeMismatchError names the offending input and both shapes.
type ShapeMismatchError struct {
	What           string
	Nx, Ny         int
	WantNx, WantNy int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("model: %s array is %dx%d, grid is %dx%d", e.What, e.Nx, e.Ny, e.WantNx, e.WantNy)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }
