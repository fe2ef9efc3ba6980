// Package config loads and saves run configurations. A config file
// describes everything a run needs: grid, physics, initial geometry,
// timestepping and output.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/model"
	"github.com/polarsim/iceflow/internal/physics"
	"github.com/polarsim/iceflow/internal/sim"
	"github.com/polarsim/iceflow/internal/solver"
)

type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Physics PhysicsConfig `yaml:"physics"`
	Init    InitConfig    `yaml:"init"`
	Solver  SolverConfig  `yaml:"solver"`
	Time    TimeConfig    `yaml:"time"`
	Output  OutputConfig  `yaml:"output"`
}

type GridConfig struct {
	Nx int     `yaml:"nx"`
	Ny int     `yaml:"ny"`
	Dx float64 `yaml:"dx"`
	Dy float64 `yaml:"dy"`
}

type PhysicsConfig struct {
	RhoIce       float64 `yaml:"rho_ice"`
	RhoOcean     float64 `yaml:"rho_ocean"`
	Gravity      float64 `yaml:"gravity"`
	SeaLevel     float64 `yaml:"sea_level"`
	GlenA        float64 `yaml:"glen_a"`
	GlenN        float64 `yaml:"glen_n"`
	WeertmanC    float64 `yaml:"weertman_c"`
	WeertmanM    float64 `yaml:"weertman_m"`
	Accumulation float64 `yaml:"accumulation"`
}

// InitConfig describes the initial geometry. The bed is a linear ramp
// b(x) = bed_top - bed_slope * x, which covers the usual flowline
// setups; array-valued beds come in through the library API instead.
type InitConfig struct {
	BedTop    float64 `yaml:"bed_top"`
	BedSlope  float64 `yaml:"bed_slope"`
	Thickness float64 `yaml:"thickness"`
}

type SolverConfig struct {
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
	Relax   float64 `yaml:"relax"`
}

type TimeConfig struct {
	Dt      float64 `yaml:"dt"`
	EndTime float64 `yaml:"end_time"`
}

type OutputConfig struct {
	Freq     float64  `yaml:"freq"` // 0 disables output
	Dir      string   `yaml:"dir"`
	Fields   []string `yaml:"fields"`
	Continue bool     `yaml:"continue_on_io_error"`
}

// Default is the MISMIP-style flowline: 1.8 Mm domain, linear
// overdeepening-free bed, uniform 300 m ice, 0.3 m/yr accumulation.
func Default() *Config {
	p := physics.Defaults()
	return &Config{
		Grid: GridConfig{Nx: 150, Ny: 2, Dx: 12000, Dy: 12000},
		Physics: PhysicsConfig{
			RhoIce:       p.RhoIce,
			RhoOcean:     p.RhoOcean,
			Gravity:      p.Gravity,
			SeaLevel:     p.SeaLevel,
			GlenA:        p.GlenA,
			GlenN:        p.GlenN,
			WeertmanC:    p.WeertmanC,
			WeertmanM:    p.WeertmanM,
			Accumulation: 0.3,
		},
		Init:   InitConfig{BedTop: 720, BedSlope: 778.5 / 750000, Thickness: 300},
		Solver: SolverConfig{Tol: 1e-4, MaxIter: 200, Relax: 1.0},
		Time:   TimeConfig{Dt: 0.5, EndTime: 100},
		Output: OutputConfig{
			Freq:   10,
			Dir:    "output",
			Fields: []string{field.NameThickness, field.NameSurface, field.NameBed, field.NameU},
		},
	}
}

// Load reads a YAML config over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildModel assembles the model this config describes.
func (c *Config) BuildModel() (*model.Model, error) {
	g, err := grid.New(c.Grid.Nx, c.Grid.Ny, c.Grid.Dx, c.Grid.Dy)
	if err != nil {
		return nil, err
	}
	p := physics.Params{
		RhoIce:     c.Physics.RhoIce,
		RhoOcean:   c.Physics.RhoOcean,
		Gravity:    c.Physics.Gravity,
		SeaLevel:   c.Physics.SeaLevel,
		GlenA:      c.Physics.GlenA,
		GlenN:      c.Physics.GlenN,
		WeertmanC:  c.Physics.WeertmanC,
		WeertmanM:  c.Physics.WeertmanM,
		EpsRegular: physics.Defaults().EpsRegular,
		URegular:   physics.Defaults().URegular,
	}
	bed := model.BedFunc(func(x, y float64) float64 {
		return c.Init.BedTop - c.Init.BedSlope*x
	})
	return model.New(g, bed, p, model.UniformThickness(c.Init.Thickness), model.Config{
		MassBalance: physics.Constant(c.Physics.Accumulation),
		Solver: solver.Options{
			Tol:     c.Solver.Tol,
			MaxIter: c.Solver.MaxIter,
			Relax:   c.Solver.Relax,
		},
	})
}

// BuildSimulation assembles the simulation, including its model.
func (c *Config) BuildSimulation() (*sim.Simulation, error) {
	m, err := c.BuildModel()
	if err != nil {
		return nil, err
	}
	out := sim.OutputParams{Freq: math.Inf(1)}
	if c.Output.Freq > 0 {
		fields := make(map[string]string, len(c.Output.Fields))
		for _, name := range c.Output.Fields {
			fields[name] = name
		}
		out = sim.OutputParams{
			Freq:   c.Output.Freq,
			Dir:    c.Output.Dir,
			Fields: fields,
		}
		if c.Output.Continue {
			out.OnError = sim.IOContinue
		}
	}
	return sim.New(m, sim.TimesteppingParams{Dt: c.Time.Dt, EndTime: c.Time.EndTime}, out)
}
