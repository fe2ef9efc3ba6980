// Package sim drives the diagnose/prognose loop: it owns the
// simulation clock, triggers output at configured intervals and turns
// numerical failures into a terminal Failed phase without corrupting
// the last diagnosed state.
package sim

import (
	"context"
	"math"

	"github.com/polarsim/iceflow/internal/evolve"
	"github.com/polarsim/iceflow/internal/model"
	"github.com/polarsim/iceflow/internal/snapshot"
)

// Phase is the controller state.
type Phase int

const (
	Initialized Phase = iota
	Stepping
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// timeSlack absorbs float accumulation in the clock when testing
// whether an output event or the end of the run has been reached.
const timeSlack = 1e-9

// Simulation binds a model to timestepping and output parameters. It
// has exclusive write access to the model while a step is in flight.
type Simulation struct {
	Model  *model.Model
	Clock  TimesteppingParams
	Output OutputParams

	T     float64
	Step  int
	phase Phase
	err   error

	sink       snapshot.Sink
	lastOutput float64

	// IOErrors collects write failures under the IOContinue policy;
	// a non-empty list marks the run degraded.
	IOErrors []error
}

// New validates the parameters and binds them to a model. A zero
// OutputParams disables output.
func New(m *model.Model, clock TimesteppingParams, out OutputParams) (*Simulation, error) {
	if err := clock.Validate(); err != nil {
		return nil, err
	}
	if out.Freq == 0 && out.Dir == "" && out.Fields == nil {
		out.Freq = math.Inf(1)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		Model:      m,
		Clock:      clock,
		Output:     out,
		T:          clock.StartTime,
		lastOutput: clock.StartTime,
		phase:      Initialized,
	}
	if s.outputEnabled() {
		sink, err := snapshot.NewDirSink(out.Dir)
		if err != nil {
			return nil, err
		}
		s.sink = snapshot.NewAsyncSink(sink, 8)
	}
	return s, nil
}

// SetSink replaces the output sink, for callers that buffer or ship
// snapshots elsewhere. Must be called before Run.
func (s *Simulation) SetSink(sink snapshot.Sink) {
	if s.sink != nil {
		_ = s.sink.Close()
	}
	s.sink = sink
}

// Phase returns the controller phase.
func (s *Simulation) Phase() Phase { return s.phase }

// Err returns the terminal error of a Failed run.
func (s *Simulation) Err() error { return s.err }

// Degraded reports whether output events were lost to IO failures
// under the continue policy.
func (s *Simulation) Degraded() bool { return len(s.IOErrors) > 0 }

func (s *Simulation) outputEnabled() bool {
	return !math.IsInf(s.Output.Freq, 1) && s.Output.Freq > 0
}

// Run steps the simulation to EndTime or failure. The final step is
// shortened so the clock lands exactly on EndTime. Cancellation via
// ctx stops the run between completed steps, leaving it resumable.
func (s *Simulation) Run(ctx context.Context) error {
	for s.phase != Completed && s.phase != Failed {
		select {
		case <-ctx.Done():
			if err := s.flushSink(); err != nil {
				if s.Output.OnError == IOContinue {
					s.IOErrors = append(s.IOErrors, err)
				} else {
					return s.fail(err)
				}
			}
			return ctx.Err()
		default:
		}
		if err := s.StepOnce(); err != nil {
			return err
		}
	}
	return s.err
}

// StepOnce advances the clock by one (possibly shortened) step,
// performing the lazy initial diagnose and any due output. Completion
// and failure move the phase terminally; extra calls are no-ops.
func (s *Simulation) StepOnce() error {
	if s.phase == Completed || s.phase == Failed {
		return s.err
	}

	if !s.Model.Diagnosed() {
		if err := s.Model.UpdateState(); err != nil {
			return s.fail(err)
		}
	}
	s.phase = Stepping

	if s.T >= s.Clock.EndTime-timeSlack {
		return s.finish()
	}

	dt := s.Clock.Dt
	if s.T+dt > s.Clock.EndTime {
		dt = s.Clock.EndTime - s.T
	}

	if err := evolve.Step(s.Model.Grid, s.Model.Fields, s.Model.MassBalance, s.T, dt); err != nil {
		return s.fail(err)
	}
	s.Model.MarkStale()
	if err := s.Model.UpdateState(); err != nil {
		return s.fail(err)
	}

	s.T += dt
	s.Step++

	if s.outputEnabled() && s.T-s.lastOutput >= s.Output.Freq-timeSlack {
		if err := s.emit(); err != nil {
			if s.Output.OnError == IOContinue {
				s.IOErrors = append(s.IOErrors, err)
			} else {
				return s.fail(err)
			}
		}
		s.lastOutput = s.T
	}

	if s.T >= s.Clock.EndTime-timeSlack {
		return s.finish()
	}
	return nil
}

// finish lands the clock exactly on the end time rather than a float64
// neighbour, and drains the sink.
func (s *Simulation) finish() error {
	s.T = s.Clock.EndTime
	s.phase = Completed
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			if s.Output.OnError == IOContinue {
				s.IOErrors = append(s.IOErrors, err)
				return nil
			}
			s.phase = Failed
			s.err = err
			return err
		}
	}
	return nil
}

// flushSink pushes queued output to disk without closing the sink, so
// a stopped run keeps its snapshots and stays resumable.
func (s *Simulation) flushSink() error {
	type flusher interface{ Flush() error }
	if f, ok := s.sink.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// emit captures a consistent snapshot at the current clock and hands
// it to the sink.
func (s *Simulation) emit() error {
	snap, err := snapshot.Capture(s.Model.Fields, s.Output.Fields, s.Model.Grid.Dx, s.Model.Grid.Dy, s.T, s.Step)
	if err != nil {
		return err
	}
	return s.sink.Write(snap)
}

// fail records the terminal error, preserving the last successfully
// diagnosed model state for inspection.
func (s *Simulation) fail(err error) error {
	s.phase = Failed
	s.err = err
	if s.sink != nil {
		// Best effort drain; the run error takes precedence.
		_ = s.sink.Close()
	}
	return err
}
