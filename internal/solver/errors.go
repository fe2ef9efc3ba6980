package solver

import (
	"errors"
	"fmt"
)

// Domain errors for the velocity solve.
var (
	// ErrNegativeThickness indicates the thickness field violates h >= 0.
	ErrNegativeThickness = errors.New("solver: negative ice thickness")

	// ErrNonFinite indicates a NaN or Inf in an input field.
	ErrNonFinite = errors.New("solver: non-finite input field")

	// ErrNonConvergence indicates the Picard iteration exhausted its
	// budget without meeting tolerance.
	ErrNonConvergence = errors.New("solver: velocity iteration did not converge")

	// ErrSingularSystem indicates the inner linear solve failed.
	ErrSingularSystem = errors.New("solver: singular momentum system")
)

// NonConvergenceError reports how far the Picard iteration got.
type NonConvergenceError struct {
	Iterations int
	Residual   float64
	Tol        float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("solver: velocity iteration did not converge: residual %.3e > tol %.3e after %d iterations",
		e.Residual, e.Tol, e.Iterations)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }
