package grid

import (
	"math"
	"testing"
)

func TestNewCoordinates(t *testing.T) {
	g, err := New(4, 2, 100, 50)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	wantXC := []float64{50, 150, 250, 350}
	for i, want := range wantXC {
		if got := g.XC()[i]; math.Abs(got-want) > 1e-12 {
			t.Errorf("xc[%d] = %g, want %g", i, got, want)
		}
	}

	if len(g.XF()) != 5 {
		t.Fatalf("expected 5 faces, got %d", len(g.XF()))
	}
	if g.XF()[4] != 400 {
		t.Errorf("last face = %g, want 400", g.XF()[4])
	}

	if g.YC()[0] != 25 || g.YC()[1] != 75 {
		t.Errorf("yc = %v, want [25 75]", g.YC())
	}

	if g.NumCells() != 8 {
		t.Errorf("expected 8 cells, got %d", g.NumCells())
	}
}

func TestNewRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		nx, ny int
		dx, dy float64
	}{
		{"zero nx", 0, 2, 1, 1},
		{"negative ny", 3, -1, 1, 1},
		{"zero dx", 3, 2, 0, 1},
		{"negative dy", 3, 2, 1, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.nx, tt.ny, tt.dx, tt.dy); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFlowlineGrid(t *testing.T) {
	g, err := New(150, 2, 12000, 12000)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if g.Lx() != 1.8e6 {
		t.Errorf("domain length = %g, want 1.8e6", g.Lx())
	}
	if !g.MatchesShape(150, 2) {
		t.Error("shape should match (150, 2)")
	}
	if g.MatchesShape(2, 150) {
		t.Error("transposed shape must not match")
	}
}
