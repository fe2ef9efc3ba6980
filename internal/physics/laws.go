package physics

import "math"

// Rheology maps a strain rate to a vertically averaged effective
// viscosity. Implementations are stateless and safe for reuse across
// Picard iterations.
type Rheology interface {
	EffectiveViscosity(strainRate float64) float64
}

// FrictionLaw maps a sliding speed to a linearized basal drag
// coefficient beta, so that basal shear stress is beta*u.
type FrictionLaw interface {
	DragCoefficient(speed float64) float64
}

// GlenLaw is the standard shear-thinning ice rheology
// nu = 1/2 A^(-1/n) |e|^((1-n)/n).
type GlenLaw struct {
	A, N float64
	Eps  float64 // strain rate floor
}

// NewGlenLaw builds a Glen rheology from the parameter set.
func NewGlenLaw(p Params) GlenLaw {
	return GlenLaw{A: p.GlenA, N: p.GlenN, Eps: p.EpsRegular}
}

func (g GlenLaw) EffectiveViscosity(strainRate float64) float64 {
	e := math.Abs(strainRate)
	if e < g.Eps {
		e = g.Eps
	}
	return 0.5 * math.Pow(g.A, -1/g.N) * math.Pow(e, (1-g.N)/g.N)
}

// WeertmanLaw is power-law basal sliding tau_b = C |u|^(m-1) u,
// linearized as beta = C |u|^(m-1) for the Picard iteration.
type WeertmanLaw struct {
	C, M float64
	UReg float64 // sliding speed floor
}

// NewWeertmanLaw builds a Weertman friction law from the parameter set.
func NewWeertmanLaw(p Params) WeertmanLaw {
	return WeertmanLaw{C: p.WeertmanC, M: p.WeertmanM, UReg: p.URegular}
}

func (w WeertmanLaw) DragCoefficient(speed float64) float64 {
	s := math.Abs(speed)
	if s < w.UReg {
		s = w.UReg
	}
	return w.C * math.Pow(s, w.M-1)
}
