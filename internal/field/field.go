package field

import "math"

// Field is a 2-D scalar field aligned to a grid, stored row-major
// (index j*nx+i for cell (i, j)).
type Field struct {
	Nx, Ny int
	Data   []float64
}

// NewField allocates a zero field of shape nx*ny.
func NewField(nx, ny int) *Field {
	return &Field{Nx: nx, Ny: ny, Data: make([]float64, nx*ny)}
}

// FromSlice wraps an existing flat array. The slice length must equal
// nx*ny; callers validate shape before wrapping.
func FromSlice(nx, ny int, data []float64) *Field {
	return &Field{Nx: nx, Ny: ny, Data: data}
}

func (f *Field) At(i, j int) float64     { return f.Data[j*f.Nx+i] }
func (f *Field) Set(i, j int, v float64) { f.Data[j*f.Nx+i] = v }

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	c := NewField(f.Nx, f.Ny)
	copy(c.Data, f.Data)
	return c
}

// CopyFrom overwrites this field's values from src, which must have the
// same shape.
func (f *Field) CopyFrom(src *Field) {
	copy(f.Data, src.Data)
}

// Fill sets every cell to v.
func (f *Field) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// MaxAbs returns the largest absolute cell value.
func (f *Field) MaxAbs() float64 {
	m := 0.0
	for _, v := range f.Data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Min returns the smallest cell value.
func (f *Field) Min() float64 {
	m := math.Inf(1)
	for _, v := range f.Data {
		if v < m {
			m = v
		}
	}
	return m
}

// Sum returns the sum over all cells.
func (f *Field) Sum() float64 {
	s := 0.0
	for _, v := range f.Data {
		s += v
	}
	return s
}

// IsFinite reports whether every cell is finite (no NaN or Inf).
func (f *Field) IsFinite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Mask is a 2-D boolean field, row-major like Field.
type Mask struct {
	Nx, Ny int
	Data   []bool
}

func NewMask(nx, ny int) *Mask {
	return &Mask{Nx: nx, Ny: ny, Data: make([]bool, nx*ny)}
}

func (m *Mask) At(i, j int) bool     { return m.Data[j*m.Nx+i] }
func (m *Mask) Set(i, j int, v bool) { m.Data[j*m.Nx+i] = v }

func (m *Mask) Clone() *Mask {
	c := NewMask(m.Nx, m.Ny)
	copy(c.Data, m.Data)
	return c
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}
