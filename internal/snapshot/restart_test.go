package snapshot

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/model"
	"github.com/polarsim/iceflow/internal/physics"
)

func restartModel(t *testing.T) *model.Model {
	t.Helper()
	g, err := grid.New(6, 1, 1000, 1000)
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.New(g, model.BedFunc(func(x, y float64) float64 { return 10 }),
		physics.Defaults(), model.UniformThickness(80), model.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRestoreRebuildsState(t *testing.T) {
	dir := t.TempDir()
	m := restartModel(t)
	m.Fields.H.Set(2, 0, 42)

	s, err := Capture(m.Fields, map[string]string{field.NameThickness: field.NameThickness}, 1000, 1000, 7.5, 15)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(dir); err != nil {
		t.Fatal(err)
	}

	fresh := restartModel(t)
	tm, step, err := Restore(filepath.Join(dir, FileName(15)), fresh)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if tm != 7.5 || step != 15 {
		t.Errorf("restored t/step = %g/%d, want 7.5/15", tm, step)
	}
	if fresh.Fields.H.At(2, 0) != 42 {
		t.Error("thickness not restored")
	}
	if fresh.Diagnosed() {
		t.Error("restored model must require a fresh diagnose")
	}
}

func TestRestoreNeedsThickness(t *testing.T) {
	dir := t.TempDir()
	s := &Snap{Step: 1, Nx: 6, Ny: 1, Fields: map[string][]float64{"u": make([]float64, 6)}}
	if err := s.Write(dir); err != nil {
		t.Fatal(err)
	}
	m := restartModel(t)
	if _, _, err := Restore(filepath.Join(dir, FileName(1)), m); !errors.Is(err, ErrNoThickness) {
		t.Errorf("expected ErrNoThickness, got %v", err)
	}
}
