package sim

import (
	"fmt"
	"math"

	"github.com/polarsim/iceflow/internal/field"
)

// TimesteppingParams fixes the clock for a run. Times are in years.
type TimesteppingParams struct {
	Dt        float64
	EndTime   float64
	StartTime float64 // nonzero on restarts
}

// Validate checks the clock parameters.
func (p TimesteppingParams) Validate() error {
	if p.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", p.Dt)
	}
	if p.EndTime < p.StartTime {
		return fmt.Errorf("sim: end time %g before start time %g", p.EndTime, p.StartTime)
	}
	return nil
}

// OutputParams configures snapshot output. Freq is the interval
// between output events in model years; +Inf means never.
type OutputParams struct {
	// Fields maps output names to store field names.
	Fields map[string]string
	Freq   float64
	Dir    string

	// OnError selects the IO failure policy.
	OnError IOPolicy
}

// IOPolicy chooses between aborting on a failed write and continuing
// with that event's output missing.
type IOPolicy int

const (
	// IOFatal aborts the run on the first failed write. The default:
	// silent data loss is worse than a dead run.
	IOFatal IOPolicy = iota
	// IOContinue records the failure and keeps stepping.
	IOContinue
)

// DefaultOutputFields exports the fields the usual plots need.
func DefaultOutputFields() map[string]string {
	return map[string]string{
		field.NameThickness: field.NameThickness,
		field.NameSurface:   field.NameSurface,
		field.NameBed:       field.NameBed,
		field.NameU:         field.NameU,
	}
}

// Validate checks the output parameters.
func (p OutputParams) Validate() error {
	if p.Freq <= 0 {
		return fmt.Errorf("sim: output frequency must be positive (or +Inf for never), got %g", p.Freq)
	}
	if !math.IsInf(p.Freq, 1) {
		if p.Dir == "" {
			return fmt.Errorf("sim: output directory required when output is enabled")
		}
		if len(p.Fields) == 0 {
			return fmt.Errorf("sim: output enabled but no fields mapped")
		}
		for out, name := range p.Fields {
			if !field.ValidName(name) {
				return fmt.Errorf("sim: output %q maps to unknown field %q", out, name)
			}
		}
	}
	return nil
}
