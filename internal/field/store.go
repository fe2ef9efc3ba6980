package field

import "fmt"

// Canonical field names used by output mappings and snapshots.
const (
	NameBed       = "bed"
	NameThickness = "thickness"
	NameSurface   = "surface"
	NameU         = "u"
	NameV         = "v"
	NameViscosity = "viscosity"
	NameDrag      = "drag"
)

// Store holds every physical field of the model on one grid.
//
// B and H are the primary geometry; S is always derived from them via
// the flotation criterion. U, V, Grounded, Visc and Drag are diagnostic
// and owned by the state updater.
type Store struct {
	Nx, Ny int

	B *Field // bed elevation (m, positive above sea level)
	H *Field // ice thickness (m, never negative)
	S *Field // upper surface elevation (m), derived

	U *Field // horizontal velocity, x component (m/yr)
	V *Field // horizontal velocity, y component (m/yr)

	Grounded *Mask

	Visc *Field // vertically integrated effective viscosity
	Drag *Field // basal drag coefficient, zero where floating
}

// NewStore allocates all fields at the given shape.
func NewStore(nx, ny int) *Store {
	return &Store{
		Nx: nx, Ny: ny,
		B:        NewField(nx, ny),
		H:        NewField(nx, ny),
		S:        NewField(nx, ny),
		U:        NewField(nx, ny),
		V:        NewField(nx, ny),
		Grounded: NewMask(nx, ny),
		Visc:     NewField(nx, ny),
		Drag:     NewField(nx, ny),
	}
}

// ValidName reports whether name refers to a store field.
func ValidName(name string) bool {
	switch name {
	case NameBed, NameThickness, NameSurface, NameU, NameV, NameViscosity, NameDrag:
		return true
	}
	return false
}

// ByName returns the named field, used by output mappings.
func (s *Store) ByName(name string) (*Field, error) {
	switch name {
	case NameBed:
		return s.B, nil
	case NameThickness:
		return s.H, nil
	case NameSurface:
		return s.S, nil
	case NameU:
		return s.U, nil
	case NameV:
		return s.V, nil
	case NameViscosity:
		return s.Visc, nil
	case NameDrag:
		return s.Drag, nil
	}
	return nil, fmt.Errorf("field: unknown field %q", name)
}

// Clone deep-copies the whole store.
func (s *Store) Clone() *Store {
	return &Store{
		Nx: s.Nx, Ny: s.Ny,
		B:        s.B.Clone(),
		H:        s.H.Clone(),
		S:        s.S.Clone(),
		U:        s.U.Clone(),
		V:        s.V.Clone(),
		Grounded: s.Grounded.Clone(),
		Visc:     s.Visc.Clone(),
		Drag:     s.Drag.Clone(),
	}
}
