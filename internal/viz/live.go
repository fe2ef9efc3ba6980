package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/polarsim/iceflow/internal/diag"
	"github.com/polarsim/iceflow/internal/sim"
)

// TickMsg drives the live view's step cadence.
type TickMsg time.Time

// stepBatch is how many model steps run per animation frame.
const stepBatch = 1

// Live is a bubbletea model that steps a simulation and draws the
// evolving geometry. Quit with q; the simulation stops where it is.
type Live struct {
	Sim      *sim.Simulation
	Interval time.Duration

	recorder *diag.Recorder
	err      error
	done     bool
}

// NewLive wraps a simulation for interactive stepping at the given
// frame interval.
func NewLive(s *sim.Simulation, interval time.Duration) *Live {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Live{Sim: s, Interval: interval, recorder: diag.NewRecorder()}
}

func (l *Live) tick() tea.Cmd {
	return tea.Tick(l.Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l *Live) Init() tea.Cmd { return l.tick() }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return l, tea.Quit
		}
	case TickMsg:
		if l.done || l.err != nil {
			return l, tea.Quit
		}
		for i := 0; i < stepBatch; i++ {
			l.err = l.Sim.StepOnce()
			if l.err != nil {
				break
			}
			if l.Sim.Phase() == sim.Completed {
				l.done = true
				break
			}
		}
		m := l.Sim.Model
		l.recorder.Observe(m.Grid, m.Fields, l.Sim.T, l.Sim.Step)
		return l, l.tick()
	}
	return l, nil
}

func (l *Live) View() string {
	m := l.Sim.Model
	surface := make([]float64, m.Grid.Nx)
	bed := make([]float64, m.Grid.Nx)
	for i := 0; i < m.Grid.Nx; i++ {
		surface[i] = m.Fields.S.At(i, 0)
		bed[i] = m.Fields.B.At(i, 0)
	}
	graph := asciigraph.PlotMany([][]float64{bed, surface},
		asciigraph.Width(72), asciigraph.Height(18))

	var b strings.Builder
	b.WriteString(headerStyle.Render("iceflow live"))
	b.WriteString("\n")
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n")

	vol := (diag.Volume{}).Compute(m.Grid, m.Fields)
	b.WriteString(labelStyle.Render(
		fmt.Sprintf("t = %8.2f yr  step %6d  volume %.3e m^3  u_max %7.1f m/yr",
			l.Sim.T, l.Sim.Step, vol, m.Fields.U.MaxAbs())))
	b.WriteString("\n")
	switch {
	case l.err != nil:
		b.WriteString(warnStyle.Render("run failed: " + l.err.Error()))
		b.WriteString("\n")
	case l.done:
		b.WriteString(labelStyle.Render("run complete - press q"))
		b.WriteString("\n")
	default:
		b.WriteString(labelStyle.Render("q: quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// Recorder exposes the diagnostics gathered while the view ran.
func (l *Live) Recorder() *diag.Recorder { return l.recorder }
