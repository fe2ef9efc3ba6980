package sim

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/polarsim/iceflow/internal/evolve"
	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/model"
	"github.com/polarsim/iceflow/internal/physics"
	"github.com/polarsim/iceflow/internal/snapshot"
	"github.com/polarsim/iceflow/internal/solver"
)

// landSheet is a small fully grounded setup that steps quickly.
func landSheet(t *testing.T) *model.Model {
	t.Helper()
	g, err := grid.New(4, 1, 1000, 1000)
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.New(g, model.BedFunc(func(x, y float64) float64 { return 100 }),
		physics.Defaults(), model.UniformThickness(10), model.Config{
			MassBalance: physics.Constant(0.3),
		})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// marineSheet is the downward-sloping marine setup with fast ice.
func marineSheet(t *testing.T, cfg model.Config) *model.Model {
	t.Helper()
	g, err := grid.New(20, 1, 12000, 12000)
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.New(g, model.BedFunc(func(x, y float64) float64 {
		return 720 - 778.5*x/750000*7.5 // steeper so the shelf starts inside 20 cells
	}), physics.Defaults(), model.UniformThickness(300), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRunStepCountAndFinalClock(t *testing.T) {
	g := NewWithT(t)
	s, err := New(landSheet(t), TimesteppingParams{Dt: 0.5, EndTime: 100}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(s.Phase()).To(Equal(Initialized))
	g.Expect(s.Run(context.Background())).To(Succeed())

	g.Expect(s.Phase()).To(Equal(Completed))
	g.Expect(s.T).To(Equal(100.0), "clock must land exactly on end time")
	g.Expect(s.Step).To(Equal(200))
}

func TestRunShortensFinalStep(t *testing.T) {
	g := NewWithT(t)
	// 0.3 does not divide 1.0: the last step must shrink, not overshoot.
	s, err := New(landSheet(t), TimesteppingParams{Dt: 0.3, EndTime: 1.0}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Run(context.Background())).To(Succeed())
	g.Expect(s.T).To(Equal(1.0))
	g.Expect(s.Step).To(Equal(4))
}

func TestRunOutputEventCount(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	s, err := New(landSheet(t), TimesteppingParams{Dt: 0.5, EndTime: 100}, OutputParams{
		Fields: DefaultOutputFields(),
		Freq:   10,
		Dir:    dir,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Run(context.Background())).To(Succeed())

	files, err := snapshot.List(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(10), "freq 10 over 100 years yields events at 10..100")

	times := make([]float64, 0, len(files))
	for _, f := range files {
		snap, err := snapshot.Load(f)
		g.Expect(err).NotTo(HaveOccurred())
		times = append(times, snap.Time)
	}
	for k, want := range []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		g.Expect(times[k]).To(BeNumerically("~", want, 1e-9))
	}
}

func TestRunSnapshotMatchesStateAtEventTime(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	m := landSheet(t)
	s, err := New(m, TimesteppingParams{Dt: 1, EndTime: 10}, OutputParams{
		Fields: map[string]string{field.NameThickness: field.NameThickness},
		Freq:   10,
		Dir:    dir,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Run(context.Background())).To(Succeed())

	latest, err := snapshot.Latest(dir)
	g.Expect(err).NotTo(HaveOccurred())
	snap, err := snapshot.Load(latest)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(snap.Time).To(BeNumerically("~", 10, 1e-9))

	h, ok := snap.Field(field.NameThickness)
	g.Expect(ok).To(BeTrue())
	for i := range h.Data {
		g.Expect(h.Data[i]).To(Equal(m.Fields.H.Data[i]), "snapshot differs from final state")
	}
}

func TestRunThicknessStaysNonNegative(t *testing.T) {
	g := NewWithT(t)
	m := landSheet(t)
	m.MassBalance = physics.Constant(-5) // ablate everything away
	s, err := New(m, TimesteppingParams{Dt: 0.5, EndTime: 20}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Run(context.Background())).To(Succeed())
	g.Expect(m.Fields.H.Min()).To(BeNumerically(">=", 0))
	g.Expect(m.Fields.H.MaxAbs()).To(BeZero(), "sheet should be gone after 20 years at -5 m/yr")
}

func TestRunFailsOnNonConvergence(t *testing.T) {
	g := NewWithT(t)
	m := marineSheet(t, model.Config{Solver: solver.Options{MaxIter: 1, Tol: 1e-10}})
	s, err := New(m, TimesteppingParams{Dt: 0.1, EndTime: 1}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())

	err = s.Run(context.Background())
	g.Expect(errors.Is(err, solver.ErrNonConvergence)).To(BeTrue(), "got %v", err)
	g.Expect(s.Phase()).To(Equal(Failed))
	g.Expect(s.Err()).To(Equal(err))

	// Last-good state preserved for inspection.
	g.Expect(m.Fields.H.At(0, 0)).To(Equal(300.0))
	g.Expect(m.Fields.U.MaxAbs()).To(BeZero())
}

func TestRunFailsOnUnstableStep(t *testing.T) {
	g := NewWithT(t)
	m := marineSheet(t, model.Config{})
	// An absurd dt trips the CFL guard on the first prognostic step.
	s, err := New(m, TimesteppingParams{Dt: 1e9, EndTime: 1e9}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())

	err = s.Run(context.Background())
	g.Expect(errors.Is(err, evolve.ErrUnstableStep)).To(BeTrue(), "got %v", err)
	g.Expect(s.Phase()).To(Equal(Failed))
	// The rejected step must not have touched the thickness.
	g.Expect(m.Fields.H.At(5, 0)).To(Equal(300.0))
}

type failingSink struct{}

func (failingSink) Write(*snapshot.Snap) error {
	return &snapshot.IOError{Path: "dev/full", Op: "create", Err: errors.New("no space")}
}
func (failingSink) Close() error { return nil }

func TestRunIOFailureFatalByDefault(t *testing.T) {
	g := NewWithT(t)
	s, err := New(landSheet(t), TimesteppingParams{Dt: 1, EndTime: 4}, OutputParams{
		Fields: DefaultOutputFields(),
		Freq:   2,
		Dir:    t.TempDir(),
	})
	g.Expect(err).NotTo(HaveOccurred())
	s.SetSink(failingSink{})

	err = s.Run(context.Background())
	g.Expect(errors.Is(err, snapshot.ErrIO)).To(BeTrue(), "got %v", err)
	g.Expect(s.Phase()).To(Equal(Failed))
}

func TestRunIOFailureDegradedContinue(t *testing.T) {
	g := NewWithT(t)
	s, err := New(landSheet(t), TimesteppingParams{Dt: 1, EndTime: 4}, OutputParams{
		Fields:  DefaultOutputFields(),
		Freq:    2,
		Dir:     t.TempDir(),
		OnError: IOContinue,
	})
	g.Expect(err).NotTo(HaveOccurred())
	s.SetSink(failingSink{})

	g.Expect(s.Run(context.Background())).To(Succeed())
	g.Expect(s.Phase()).To(Equal(Completed))
	g.Expect(s.Degraded()).To(BeTrue())
	g.Expect(s.IOErrors).To(HaveLen(2))
}

func TestRunCancellationIsResumable(t *testing.T) {
	g := NewWithT(t)
	s, err := New(landSheet(t), TimesteppingParams{Dt: 1, EndTime: 5}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Run(ctx)
	g.Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	g.Expect(s.Phase()).NotTo(Equal(Failed))

	g.Expect(s.Run(context.Background())).To(Succeed())
	g.Expect(s.Phase()).To(Equal(Completed))
	g.Expect(s.T).To(Equal(5.0))
}

func TestStoppedRunFlushesQueuedOutput(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	s, err := New(landSheet(t), TimesteppingParams{Dt: 1, EndTime: 10}, OutputParams{
		Fields: DefaultOutputFields(),
		Freq:   2,
		Dir:    dir,
	})
	g.Expect(err).NotTo(HaveOccurred())

	// Step past the t=2 and t=4 events, leaving them queued in the
	// async sink, then stop the run.
	for i := 0; i < 4; i++ {
		g.Expect(s.StepOnce()).To(Succeed())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.Expect(errors.Is(s.Run(ctx), context.Canceled)).To(BeTrue())

	// Both events must be on disk even though the sink stays open.
	files, err := snapshot.List(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(2))

	// And the run is still resumable to completion.
	g.Expect(s.Run(context.Background())).To(Succeed())
	files, err = snapshot.List(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(5))
}

func TestNewRejectsUnknownOutputField(t *testing.T) {
	_, err := New(landSheet(t), TimesteppingParams{Dt: 1, EndTime: 1}, OutputParams{
		Fields: map[string]string{"h": "thikness"},
		Freq:   1,
		Dir:    t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for unknown store field name")
	}
}

func TestRestartMatchesUninterruptedRun(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()

	// Uninterrupted run 0 -> 10, writing at 5 and 10.
	full, err := New(landSheet(t), TimesteppingParams{Dt: 0.5, EndTime: 10}, OutputParams{
		Fields: DefaultOutputFields(),
		Freq:   5,
		Dir:    dir,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(full.Run(context.Background())).To(Succeed())

	// Restart from the t=5 snapshot and run the second half.
	files, err := snapshot.List(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(2))

	m := landSheet(t)
	t0, step0, err := snapshot.Restore(files[0], m)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(t0).To(BeNumerically("~", 5, 1e-9))

	resumed, err := New(m, TimesteppingParams{Dt: 0.5, EndTime: 10, StartTime: t0}, OutputParams{})
	g.Expect(err).NotTo(HaveOccurred())
	resumed.Step = step0
	g.Expect(resumed.Run(context.Background())).To(Succeed())

	g.Expect(resumed.T).To(Equal(10.0))
	g.Expect(resumed.Step).To(Equal(full.Step))
	for i := range m.Fields.H.Data {
		g.Expect(m.Fields.H.Data[i]).To(BeNumerically("~", full.Model.Fields.H.Data[i], 1e-2),
			"restarted thickness diverged at cell %d", i)
	}
}
