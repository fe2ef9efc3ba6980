package model

import (
	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
)

// BedSource is the closed set of bed elevation inputs: a function of
// (x, y) or a precomputed array. Either way it is evaluated exactly
// once, at model construction.
type BedSource interface {
	fill(g *grid.Grid, dst *field.Field) error
}

// BedFunc evaluates a function at every cell center.
type BedFunc func(x, y float64) float64

func (f BedFunc) fill(g *grid.Grid, dst *field.Field) error {
	fillFromFunc(g, dst, f)
	return nil
}

// BedGrid copies a precomputed array; its shape must match the grid.
type BedGrid struct{ Field *field.Field }

func (b BedGrid) fill(g *grid.Grid, dst *field.Field) error {
	if !g.MatchesShape(b.Field.Nx, b.Field.Ny) {
		return &ShapeMismatchError{What: "bed", Nx: b.Field.Nx, Ny: b.Field.Ny, WantNx: g.Nx, WantNy: g.Ny}
	}
	dst.CopyFrom(b.Field)
	return nil
}

// InitialConditions is the closed set of initial thickness inputs,
// mirroring BedSource.
type InitialConditions interface {
	fill(g *grid.Grid, dst *field.Field) error
}

// ThicknessFunc evaluates a function at every cell center.
type ThicknessFunc func(x, y float64) float64

func (f ThicknessFunc) fill(g *grid.Grid, dst *field.Field) error {
	fillFromFunc(g, dst, f)
	return nil
}

// ThicknessGrid copies a precomputed array; its shape must match the
// grid.
type ThicknessGrid struct{ Field *field.Field }

func (t ThicknessGrid) fill(g *grid.Grid, dst *field.Field) error {
	if !g.MatchesShape(t.Field.Nx, t.Field.Ny) {
		return &ShapeMismatchError{What: "initial thickness", Nx: t.Field.Nx, Ny: t.Field.Ny, WantNx: g.Nx, WantNy: g.Ny}
	}
	dst.CopyFrom(t.Field)
	return nil
}

// UniformThickness fills every cell with one value.
type UniformThickness float64

func (u UniformThickness) fill(g *grid.Grid, dst *field.Field) error {
	dst.Fill(float64(u))
	return nil
}

func fillFromFunc(g *grid.Grid, dst *field.Field, f func(x, y float64) float64) {
	xc, yc := g.XC(), g.YC()
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			dst.Set(i, j, f(xc[i], yc[j]))
		}
	}
}
