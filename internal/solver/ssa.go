package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/physics"
)

// Options configures the nonlinear velocity solve.
type Options struct {
	Tol     float64 // relative velocity-change tolerance
	MaxIter int     // Picard iteration budget
	Relax   float64 // Picard damping factor in (0, 1]
}

// DefaultOptions returns the stock solve configuration.
func DefaultOptions() Options {
	return Options{Tol: 1e-4, MaxIter: 200, Relax: 1.0}
}

// Solver computes the ice velocity from the current geometry by solving
// the shallow-shelf momentum balance along each grid row:
//
//	d/dx(4 H nu du/dx) - beta u = rho_i g H ds/dx
//
// nu and beta depend on the unknown u, so the solve iterates: freeze
// the coefficients, solve the resulting tridiagonal system, repeat
// until the velocity stops changing. Boundary conditions are u = 0 at
// the upstream edge and the calving-front stress condition at the
// downstream edge.
type Solver struct {
	grid     *grid.Grid
	params   physics.Params
	rheology physics.Rheology
	friction physics.FrictionLaw
	opts     Options

	// scratch, sized to one grid row
	dl, d, du []float64
	rhs       []float64
	uNew      []float64
	nu        []float64
	beta      []float64
	dudx      []float64
}

// New builds a solver for one grid. Rheology or friction may be nil to
// use Glen's law and Weertman sliding from the parameter set.
func New(g *grid.Grid, p physics.Params, rheology physics.Rheology, friction physics.FrictionLaw, opts Options) *Solver {
	if rheology == nil {
		rheology = physics.NewGlenLaw(p)
	}
	if friction == nil {
		friction = physics.NewWeertmanLaw(p)
	}
	if opts.Tol <= 0 {
		opts.Tol = DefaultOptions().Tol
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultOptions().MaxIter
	}
	if opts.Relax <= 0 || opts.Relax > 1 {
		opts.Relax = 1.0
	}
	n := g.Nx
	return &Solver{
		grid:     g,
		params:   p,
		rheology: rheology,
		friction: friction,
		opts:     opts,
		dl:       make([]float64, n-1),
		d:        make([]float64, n),
		du:       make([]float64, n-1),
		rhs:      make([]float64, n),
		uNew:     make([]float64, n),
		nu:       make([]float64, n),
		beta:     make([]float64, n),
		dudx:     make([]float64, n),
	}
}

// Solve updates U, V, Grounded, S, Visc and Drag in the store from the
// current H and B. H and B are never mutated. On NonConvergence the
// velocity fields are untouched and the error carries the residual.
func (s *Solver) Solve(st *field.Store) error {
	if st.H.Min() < 0 {
		return ErrNegativeThickness
	}
	if !st.B.IsFinite() || !st.H.IsFinite() {
		return ErrNonFinite
	}

	UpdateFlotation(st, s.params)

	// Converged rows are buffered and committed together so a failed
	// solve leaves the last-good velocities in place.
	uAll := field.NewField(s.grid.Nx, s.grid.Ny)
	nuAll := field.NewField(s.grid.Nx, s.grid.Ny)
	betaAll := field.NewField(s.grid.Nx, s.grid.Ny)

	var residual float64
	for j := 0; j < s.grid.Ny; j++ {
		res, err := s.solveRow(st, j, uAll, nuAll, betaAll)
		if err != nil {
			return err
		}
		if res > residual {
			residual = res
		}
	}
	if residual > s.opts.Tol {
		return &NonConvergenceError{Iterations: s.opts.MaxIter, Residual: residual, Tol: s.opts.Tol}
	}

	st.U.CopyFrom(uAll)
	st.Visc.CopyFrom(nuAll)
	st.Drag.CopyFrom(betaAll)
	// Flowline approximation: no transverse flow.
	st.V.Fill(0)
	return nil
}

// solveRow runs the Picard iteration for grid row j, writing the
// results into the buffers, and returns the final relative velocity
// change.
func (s *Solver) solveRow(st *field.Store, j int, uAll, nuAll, betaAll *field.Field) (float64, error) {
	n := s.grid.Nx

	u := make([]float64, n)
	for i := 0; i < n; i++ {
		u[i] = st.U.At(i, j)
	}

	residual := math.Inf(1)
	for iter := 0; iter < s.opts.MaxIter; iter++ {
		s.updateCoefficients(st, j, u)
		if err := s.assembleAndSolve(st, j); err != nil {
			return residual, err
		}

		residual = relChange(s.uNew, u)
		for i := 0; i < n; i++ {
			u[i] = s.opts.Relax*s.uNew[i] + (1-s.opts.Relax)*u[i]
		}
		if residual <= s.opts.Tol {
			break
		}
	}

	for i := 0; i < n; i++ {
		uAll.Set(i, j, u[i])
		nuAll.Set(i, j, s.nu[i])
		betaAll.Set(i, j, s.beta[i])
	}
	return residual, nil
}

// updateCoefficients freezes the effective viscosity and drag
// coefficient from the current velocity iterate. Drag is zero where
// floating.
func (s *Solver) updateCoefficients(st *field.Store, j int, u []float64) {
	n := s.grid.Nx
	dx := s.grid.Dx

	for i := 0; i < n; i++ {
		switch {
		case n == 1:
			s.dudx[i] = 0
		case i == 0:
			s.dudx[i] = (u[1] - u[0]) / dx
		case i == n-1:
			s.dudx[i] = (u[n-1] - u[n-2]) / dx
		default:
			s.dudx[i] = (u[i+1] - u[i-1]) / (2 * dx)
		}
		s.nu[i] = s.rheology.EffectiveViscosity(s.dudx[i])
		if st.Grounded.At(i, j) {
			s.beta[i] = s.friction.DragCoefficient(u[i])
		} else {
			s.beta[i] = 0
		}
	}
}

// assembleAndSolve builds the tridiagonal momentum system with frozen
// coefficients and solves it into s.uNew.
func (s *Solver) assembleAndSolve(st *field.Store, j int) error {
	n := s.grid.Nx
	dx := s.grid.Dx
	p := s.params
	rhog := p.RhoIce * p.Gravity

	// Face stiffness D_{i+1/2} = 4 H nu at the face between i and i+1.
	faceD := func(i int) float64 {
		h := 0.5 * (st.H.At(i, j) + st.H.At(i+1, j))
		nu := 0.5 * (s.nu[i] + s.nu[i+1])
		return 4 * h * nu
	}

	for i := 0; i < n; i++ {
		h := st.H.At(i, j)

		// Ice-free cells carry no momentum; pin them at rest.
		if h <= 0 {
			if i > 0 {
				s.dl[i-1] = 0
			}
			s.d[i] = 1
			if i < n-1 {
				s.du[i] = 0
			}
			s.rhs[i] = 0
			continue
		}

		switch {
		case i == 0:
			// Upstream edge: ice divide, no flow.
			s.d[0] = 1
			if n > 1 {
				s.du[0] = 0
			}
			s.rhs[0] = 0
		case i == n-1:
			// Calving front: membrane stress balances the ocean,
			// 4 H nu du/dx = 1/2 rho_i g (1 - rho_i/rho_w) h^2.
			a := faceD(i-1) / (dx * dx)
			front := 0.5 * rhog * (1 - p.DensityRatio()) * h * h
			s.dl[i-1] = a
			s.d[i] = -a - s.beta[i]
			s.rhs[i] = rhog*h*(st.S.At(i, j)-st.S.At(i-1, j))/dx - front/dx
		default:
			a := faceD(i-1) / (dx * dx)
			c := faceD(i) / (dx * dx)
			s.dl[i-1] = a
			s.d[i] = -a - c - s.beta[i]
			s.du[i] = c
			s.rhs[i] = rhog * h * (st.S.At(i+1, j) - st.S.At(i-1, j)) / (2 * dx)
		}
	}

	if n == 1 {
		// Single-column domain: only the divide condition applies.
		s.uNew[0] = 0
		return nil
	}

	tri := mat.NewTridiag(n, s.dl, s.d, s.du)
	var dst mat.VecDense
	if err := tri.SolveVecTo(&dst, false, mat.NewVecDense(n, s.rhs)); err != nil {
		return ErrSingularSystem
	}
	for i := 0; i < n; i++ {
		s.uNew[i] = dst.AtVec(i)
	}
	return nil
}

// relChange returns ||a-b|| / ||a||, with an absolute fallback for
// velocities near zero.
func relChange(a, b []float64) float64 {
	var num, den float64
	for i := range a {
		d := a[i] - b[i]
		num += d * d
		den += a[i] * a[i]
	}
	num = math.Sqrt(num)
	den = math.Sqrt(den)
	if den < 1e-12 {
		return num
	}
	return num / den
}
