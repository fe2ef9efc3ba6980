package physics

import (
	"math"
	"testing"
)

func TestDefaultsValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero ice density", func(p *Params) { p.RhoIce = 0 }},
		{"ice denser than ocean", func(p *Params) { p.RhoIce = p.RhoOcean + 1 }},
		{"negative gravity", func(p *Params) { p.Gravity = -9.81 }},
		{"zero glen A", func(p *Params) { p.GlenA = 0 }},
		{"glen n below 1", func(p *Params) { p.GlenN = 0.5 }},
		{"negative sliding C", func(p *Params) { p.WeertmanC = -1 }},
		{"zero strain floor", func(p *Params) { p.EpsRegular = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFlotationThreshold(t *testing.T) {
	p := Defaults()

	// 918/1020 puts the draft of 300 m ice at exactly 270 m.
	draft := 300 * p.DensityRatio()
	if math.Abs(draft-270) > 1e-9 {
		t.Fatalf("draft of 300 m ice = %g, want 270", draft)
	}

	// On a bed exactly at the draft depth 300 m ice is marginally
	// grounded; a deeper bed needs more ice.
	if ft := p.FlotationThickness(-270); math.Abs(ft-300) > 1e-9 {
		t.Errorf("flotation thickness at b=-270 is %g, want 300", ft)
	}
	if ft := p.FlotationThickness(-400); ft <= 300 {
		t.Errorf("deeper bed should need thicker ice, got %g", ft)
	}
	if ft := p.FlotationThickness(100); ft != 0 {
		t.Errorf("bed above sea level should ground any ice, got %g", ft)
	}
}

func TestFloatingSurface(t *testing.T) {
	p := Defaults()
	s := p.FloatingSurface(300)
	want := 300 * (1 - 918.0/1020.0)
	if math.Abs(s-want) > 1e-9 {
		t.Errorf("floating surface = %g, want %g", s, want)
	}
}

func TestGlenLawShearThinning(t *testing.T) {
	g := NewGlenLaw(Defaults())
	lo := g.EffectiveViscosity(1e-4)
	hi := g.EffectiveViscosity(1e-2)
	if hi >= lo {
		t.Errorf("viscosity must decrease with strain rate: nu(1e-4)=%g nu(1e-2)=%g", lo, hi)
	}
	if v := g.EffectiveViscosity(0); math.IsInf(v, 0) || math.IsNaN(v) {
		t.Errorf("viscosity at zero strain rate must be regularized, got %g", v)
	}
}

func TestWeertmanLawDrag(t *testing.T) {
	w := NewWeertmanLaw(Defaults())
	fast := w.DragCoefficient(1000)
	slow := w.DragCoefficient(10)
	if fast >= slow {
		t.Errorf("drag coefficient must decrease with speed for m<1: beta(10)=%g beta(1000)=%g", slow, fast)
	}
	if b := w.DragCoefficient(0); math.IsInf(b, 0) {
		t.Error("drag at zero speed must be regularized")
	}
}

func TestMassBalanceStrategies(t *testing.T) {
	var mb MassBalance = Constant(0.3)
	if mb.Rate(1, 2, 3) != 0.3 {
		t.Error("constant mass balance wrong")
	}

	mb = RateFunc(func(x, y, t float64) float64 { return x * t })
	if mb.Rate(2, 0, 5) != 10 {
		t.Error("func mass balance wrong")
	}
}
