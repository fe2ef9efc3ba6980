package solver

import (
	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/physics"
)

// UpdateFlotation recomputes the grounded mask and the upper surface
// from the current thickness and bed. A cell is grounded when its ice
// is at least the flotation thickness for the bed beneath it; the
// surface is b+h where grounded and the freeboard surface where
// floating. The surface field is derived here and nowhere else.
func UpdateFlotation(st *field.Store, p physics.Params) {
	for j := 0; j < st.Ny; j++ {
		for i := 0; i < st.Nx; i++ {
			b := st.B.At(i, j)
			h := st.H.At(i, j)
			grounded := h >= p.FlotationThickness(b)
			st.Grounded.Set(i, j, grounded)
			if grounded {
				st.S.Set(i, j, b+h)
			} else {
				st.S.Set(i, j, p.FloatingSurface(h))
			}
		}
	}
}
