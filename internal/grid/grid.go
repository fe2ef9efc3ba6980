package grid

import "fmt"

// Grid is a uniform rectangular grid. Fields live at cell centers;
// x-direction fluxes live on the Nx+1 cell faces. A Grid is immutable
// after construction.
type Grid struct {
	Nx, Ny int
	Dx, Dy float64

	xc, yc []float64
	xf     []float64
}

// New builds a grid with nx*ny cells of size dx*dy. A degenerate
// flowline setup uses ny of 1 or 2.
func New(nx, ny int, dx, dy float64) (*Grid, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid: dimensions must be at least 1x1, got %dx%d", nx, ny)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("grid: cell sizes must be positive, got dx=%g dy=%g", dx, dy)
	}

	g := &Grid{Nx: nx, Ny: ny, Dx: dx, Dy: dy}

	g.xc = make([]float64, nx)
	for i := range g.xc {
		g.xc[i] = (float64(i) + 0.5) * dx
	}
	g.yc = make([]float64, ny)
	for j := range g.yc {
		g.yc[j] = (float64(j) + 0.5) * dy
	}
	g.xf = make([]float64, nx+1)
	for i := range g.xf {
		g.xf[i] = float64(i) * dx
	}
	return g, nil
}

// XC returns the cell-center x coordinates. Callers must not modify the
// returned slice.
func (g *Grid) XC() []float64 { return g.xc }

// YC returns the cell-center y coordinates.
func (g *Grid) YC() []float64 { return g.yc }

// XF returns the x coordinates of the Nx+1 cell faces.
func (g *Grid) XF() []float64 { return g.xf }

// NumCells returns the total cell count.
func (g *Grid) NumCells() int { return g.Nx * g.Ny }

// Lx returns the domain extent in x.
func (g *Grid) Lx() float64 { return float64(g.Nx) * g.Dx }

// MatchesShape reports whether an (nx, ny) pair equals the grid shape.
func (g *Grid) MatchesShape(nx, ny int) bool { return nx == g.Nx && ny == g.Ny }
