// Package evolve advances the ice thickness one time step: the
// prognostic half of the model. The update is an explicit conservative
// upwind scheme,
//
//	dh/dt = a - d(h u)/dx
//
// with zero influx at the upstream boundary and free outflow at the ice
// front. Thickness is floored at zero after the update; mass that would
// go negative is lost, which is how the model expresses retreat of the
// ice front.
package evolve

import (
	"math"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/physics"
)

// CFLLimit is the largest admissible Courant number u*dt/dx. Steps
// above it fail with UnstableStep before any field is touched.
const CFLLimit = 0.9

// Step advances H in st by dt years using the diagnosed velocity and
// the mass-balance forcing evaluated at time t. Only H is mutated;
// re-deriving surface, mask and velocity is the state updater's job.
func Step(g *grid.Grid, st *field.Store, mb physics.MassBalance, t, dt float64) error {
	if dt <= 0 {
		return &UnstableStepError{Dt: dt, Courant: 0}
	}
	if c := dt * st.U.MaxAbs() / g.Dx; c > CFLLimit {
		return &UnstableStepError{Dt: dt, Courant: c}
	}

	xc := g.XC()
	yc := g.YC()
	flux := make([]float64, g.Nx+1)

	for j := 0; j < g.Ny; j++ {
		// Face fluxes q = u_face * h_upwind. Face 0 is the upstream
		// boundary (no influx); face Nx is the ice front (outflow at
		// the last cell's own velocity).
		flux[0] = 0
		for i := 1; i < g.Nx; i++ {
			uf := 0.5 * (st.U.At(i-1, j) + st.U.At(i, j))
			if uf >= 0 {
				flux[i] = uf * st.H.At(i-1, j)
			} else {
				flux[i] = uf * st.H.At(i, j)
			}
		}
		uOut := st.U.At(g.Nx-1, j)
		if uOut > 0 {
			flux[g.Nx] = uOut * st.H.At(g.Nx-1, j)
		} else {
			flux[g.Nx] = 0
		}

		for i := 0; i < g.Nx; i++ {
			a := mb.Rate(xc[i], yc[j], t)
			h := st.H.At(i, j) + dt*(a-(flux[i+1]-flux[i])/g.Dx)
			if h < 0 {
				h = 0
			}
			st.H.Set(i, j, h)
		}
	}
	return nil
}

// MaxStableDt returns a recommended time step for the current velocity
// field: half the CFL bound. +Inf when the ice is at rest.
func MaxStableDt(g *grid.Grid, st *field.Store) float64 {
	umax := st.U.MaxAbs()
	if umax == 0 {
		return math.Inf(1)
	}
	return 0.5 * g.Dx / umax
}
