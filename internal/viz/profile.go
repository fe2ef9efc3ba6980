// Package viz renders terminal views of the model: static flowline
// profiles of a snapshot and a live stepping view.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/snapshot"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// centerline extracts row 0 of a snapshot field as a plottable series.
func centerline(s *snapshot.Snap, name string) ([]float64, bool) {
	f, ok := s.Field(name)
	if !ok {
		return nil, false
	}
	row := make([]float64, f.Nx)
	for i := range row {
		row[i] = f.At(i, 0)
	}
	return row, true
}

// Profile renders the flowline profile of one snapshot field.
func Profile(s *snapshot.Snap, name string, width, height int) string {
	series, ok := centerline(s, name)
	if !ok {
		return warnStyle.Render(fmt.Sprintf("field %q not in snapshot", name))
	}
	graph := asciigraph.Plot(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s along centerline, t = %.2f yr", name, s.Time)),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("snapshot step %d", s.Step)))
	b.WriteString("\n")
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n")
	return b.String()
}

// Geometry renders surface and bed together, the standard ice-sheet
// cross-section picture.
func Geometry(s *snapshot.Snap, width, height int) string {
	surface, okS := centerline(s, field.NameSurface)
	bed, okB := centerline(s, field.NameBed)
	if !okS || !okB {
		return warnStyle.Render("snapshot lacks surface/bed fields")
	}
	graph := asciigraph.PlotMany([][]float64{bed, surface},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.SkyBlue),
		asciigraph.Caption(fmt.Sprintf("bed and surface, t = %.2f yr", s.Time)),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("geometry at step %d", s.Step)))
	b.WriteString("\n")
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("lower: bed   upper: ice surface"))
	b.WriteString("\n")
	return b.String()
}
