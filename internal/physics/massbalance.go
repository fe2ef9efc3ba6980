package physics

// MassBalance supplies the net surface accumulation/ablation rate
// (m/yr of ice equivalent) at a point and time. Implementations must be
// pure: the stepping loop may evaluate them any number of times.
type MassBalance interface {
	Rate(x, y, t float64) float64
}

// Constant is a spatially and temporally uniform mass balance.
type Constant float64

func (c Constant) Rate(x, y, t float64) float64 { return float64(c) }

// RateFunc adapts a plain function to the MassBalance interface.
type RateFunc func(x, y, t float64) float64

func (f RateFunc) Rate(x, y, t float64) float64 { return f(x, y, t) }
