// Package model assembles the grid, parameters and fields into a
// runnable ice-sheet model and exposes the diagnose operation.
package model

import (
	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/physics"
	"github.com/polarsim/iceflow/internal/solver"
)

// Model owns the mutable simulation state: the field store plus the
// solver bound to it. The grid and parameters are immutable for the
// life of the model.
type Model struct {
	Grid   *grid.Grid
	Params physics.Params
	Fields *field.Store

	MassBalance physics.MassBalance

	solver    *solver.Solver
	diagnosed bool
}

// Config carries the model inputs that have defaults.
type Config struct {
	MassBalance physics.MassBalance // nil means zero forcing
	Rheology    physics.Rheology    // nil means Glen's law from params
	Friction    physics.FrictionLaw // nil means Weertman from params
	Solver      solver.Options
}

// New assembles a model. The bed and initial thickness sources are
// resolved into arrays once, here; array-valued sources must match the
// grid shape exactly.
func New(g *grid.Grid, bed BedSource, p physics.Params, init InitialConditions, cfg Config) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if bed == nil {
		return nil, ErrNoBed
	}
	if init == nil {
		return nil, ErrNoInitialConditions
	}

	st := field.NewStore(g.Nx, g.Ny)
	if err := bed.fill(g, st.B); err != nil {
		return nil, err
	}
	if err := init.fill(g, st.H); err != nil {
		return nil, err
	}
	if !st.B.IsFinite() {
		return nil, ErrNonFiniteBed
	}
	if st.H.Min() < 0 {
		return nil, ErrNegativeInitialThickness
	}

	mb := cfg.MassBalance
	if mb == nil {
		mb = physics.Constant(0)
	}

	m := &Model{
		Grid:        g,
		Params:      p,
		Fields:      st,
		MassBalance: mb,
		solver:      solver.New(g, p, cfg.Rheology, cfg.Friction, cfg.Solver),
	}
	// Surface and mask are meaningful from the start even before the
	// first velocity solve.
	solver.UpdateFlotation(st, p)
	return m, nil
}

// UpdateState runs one diagnose: recompute the flotation mask and
// surface from the current thickness, then solve for velocity.
// Idempotent up to solver tolerance when the thickness is unchanged.
func (m *Model) UpdateState() error {
	if err := m.solver.Solve(m.Fields); err != nil {
		return err
	}
	m.diagnosed = true
	return nil
}

// Diagnosed reports whether the velocity field reflects the current
// thickness.
func (m *Model) Diagnosed() bool { return m.diagnosed }

// MarkStale flags the velocity field as outdated. The stepping loop
// calls this after every prognostic update.
func (m *Model) MarkStale() { m.diagnosed = false }

// SetThickness replaces the thickness field, as used by restarts. The
// replacement must match the grid shape and be non-negative.
func (m *Model) SetThickness(h *field.Field) error {
	if !m.Grid.MatchesShape(h.Nx, h.Ny) {
		return &ShapeMismatchError{What: "thickness", Nx: h.Nx, Ny: h.Ny, WantNx: m.Grid.Nx, WantNy: m.Grid.Ny}
	}
	if h.Min() < 0 {
		return ErrNegativeInitialThickness
	}
	m.Fields.H.CopyFrom(h)
	m.MarkStale()
	solver.UpdateFlotation(m.Fields, m.Params)
	return nil
}
