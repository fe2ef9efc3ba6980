package physics

import "fmt"

// Params collects the physical constants of the model. Units are
// metres, years and pascals throughout. A Params value is shared
// read-only across a run.
type Params struct {
	RhoIce   float64 // ice density (kg/m^3)
	RhoOcean float64 // ocean water density (kg/m^3)
	Gravity  float64 // gravitational acceleration (m/s^2)
	SeaLevel float64 // sea level datum (m)

	GlenA float64 // Glen's law rate factor (Pa^-n yr^-1)
	GlenN float64 // Glen's law exponent

	WeertmanC float64 // sliding coefficient (Pa (m/yr)^-m)
	WeertmanM float64 // sliding exponent

	// Regularization floors keeping the Picard coefficients finite at
	// zero strain rate and zero sliding speed.
	EpsRegular float64 // strain rate floor (1/yr)
	URegular   float64 // sliding speed floor (m/yr)
}

// Defaults returns parameter values for a warm marine ice sheet. The
// density ratio 918/1020 = 0.9 puts the flotation draft of 300 m thick
// ice at 270 m depth.
func Defaults() Params {
	return Params{
		RhoIce:     918.0,
		RhoOcean:   1020.0,
		Gravity:    9.81,
		SeaLevel:   0.0,
		GlenA:      1.55e-17,
		GlenN:      3.0,
		WeertmanC:  7.0e3,
		WeertmanM:  1.0 / 3.0,
		EpsRegular: 1e-10,
		URegular:   1e-3,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.RhoIce <= 0 || p.RhoOcean <= 0 {
		return fmt.Errorf("physics: densities must be positive, got ice=%g ocean=%g", p.RhoIce, p.RhoOcean)
	}
	if p.RhoIce >= p.RhoOcean {
		return fmt.Errorf("physics: ice density %g must be below ocean density %g", p.RhoIce, p.RhoOcean)
	}
	if p.Gravity <= 0 {
		return fmt.Errorf("physics: gravity must be positive, got %g", p.Gravity)
	}
	if p.GlenA <= 0 || p.GlenN < 1 {
		return fmt.Errorf("physics: glen law needs A > 0 and n >= 1, got A=%g n=%g", p.GlenA, p.GlenN)
	}
	if p.WeertmanC < 0 || p.WeertmanM <= 0 {
		return fmt.Errorf("physics: sliding law needs C >= 0 and m > 0, got C=%g m=%g", p.WeertmanC, p.WeertmanM)
	}
	if p.EpsRegular <= 0 || p.URegular <= 0 {
		return fmt.Errorf("physics: regularization floors must be positive")
	}
	return nil
}

// DensityRatio returns rho_ice/rho_ocean.
func (p Params) DensityRatio() float64 { return p.RhoIce / p.RhoOcean }

// FlotationThickness returns the minimum thickness that grounds ice on
// a bed at elevation b. Ice thinner than this floats. For beds above
// sea level the result is 0: any ice there is grounded.
func (p Params) FlotationThickness(b float64) float64 {
	depth := p.SeaLevel - b
	if depth <= 0 {
		return 0
	}
	return depth / p.DensityRatio()
}

// FloatingSurface returns the upper surface elevation of freely
// floating ice of thickness h.
func (p Params) FloatingSurface(h float64) float64 {
	return p.SeaLevel + h*(1-p.DensityRatio())
}
