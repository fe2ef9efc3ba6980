package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/polarsim/iceflow/internal/config"
	"github.com/polarsim/iceflow/internal/diag"
	"github.com/polarsim/iceflow/internal/evolve"
	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/grid"
	"github.com/polarsim/iceflow/internal/sim"
	"github.com/polarsim/iceflow/internal/snapshot"
	"github.com/polarsim/iceflow/internal/viz"
)

var (
	configFile string
	outputDir  string
	dt         float64
	endTime    float64
	outputFreq float64
	autoDt     bool
	plotField  string
	plotWidth  int
	plotHeight int
	frameMs    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "iceflow",
		Short: "marine ice-sheet flowline model",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	runCmd.Flags().StringVar(&outputDir, "out", "", "output directory (overrides config)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep in years (overrides config)")
	runCmd.Flags().Float64Var(&endTime, "time", 0, "end time in years (overrides config)")
	runCmd.Flags().Float64Var(&outputFreq, "freq", 0, "output interval in years (overrides config)")
	runCmd.Flags().BoolVar(&autoDt, "auto-dt", false, "pick dt from the CFL bound after the initial diagnose")

	listCmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "list snapshots in an output directory",
		Args:  cobra.ExactArgs(1),
		RunE:  listSnapshots,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [snapshot]",
		Short: "plot a snapshot field in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSnapshot,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "field to plot (default: bed+surface geometry)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 72, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 18, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export-csv [dir]",
		Short: "export diagnostics of all snapshots in a directory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	restartCmd := &cobra.Command{
		Use:   "restart [dir]",
		Short: "resume a run from the latest snapshot in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  restartRun,
	}
	restartCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	restartCmd.Flags().Float64Var(&endTime, "time", 0, "new end time in years (overrides config)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	liveCmd.Flags().IntVar(&frameMs, "frame-ms", 50, "frame interval in milliseconds")

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.Default())
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, restartCmd, liveCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func applyOverrides(cfg *config.Config) {
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if dt > 0 {
		cfg.Time.Dt = dt
	}
	if endTime > 0 {
		cfg.Time.EndTime = endTime
	}
	if outputFreq > 0 {
		cfg.Output.Freq = outputFreq
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	if autoDt {
		m, err := cfg.BuildModel()
		if err != nil {
			return err
		}
		if err := m.UpdateState(); err != nil {
			return err
		}
		if rec := evolve.MaxStableDt(m.Grid, m.Fields); rec < cfg.Time.Dt {
			fmt.Fprintf(cmd.OutOrStdout(), "auto-dt: %.4g yr (was %.4g)\n", rec, cfg.Time.Dt)
			cfg.Time.Dt = rec
		}
	}

	s, err := cfg.BuildSimulation()
	if err != nil {
		return err
	}
	return execute(cmd, s)
}

func restartRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if endTime > 0 {
		cfg.Time.EndTime = endTime
	}

	latest, err := snapshot.Latest(args[0])
	if err != nil {
		return err
	}
	m, err := cfg.BuildModel()
	if err != nil {
		return err
	}
	t0, step0, err := snapshot.Restore(latest, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "resuming from %s at t = %.2f yr\n", filepath.Base(latest), t0)

	out := sim.OutputParams{Fields: sim.DefaultOutputFields(), Freq: cfg.Output.Freq, Dir: args[0]}
	if cfg.Output.Freq <= 0 {
		out = sim.OutputParams{}
	}
	s, err := sim.New(m, sim.TimesteppingParams{
		Dt:        cfg.Time.Dt,
		EndTime:   cfg.Time.EndTime,
		StartTime: t0,
	}, out)
	if err != nil {
		return err
	}
	s.Step = step0
	return execute(cmd, s)
}

// execute runs a simulation with ctrl-c stopping it between steps, and
// prints the run summary.
func execute(cmd *cobra.Command, s *sim.Simulation) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	err := s.Run(ctx)
	elapsed := time.Since(start)

	w := cmd.OutOrStdout()
	switch s.Phase() {
	case sim.Completed:
		fmt.Fprintf(w, "completed: %d steps to t = %.2f yr in %s\n", s.Step, s.T, elapsed.Round(time.Millisecond))
	case sim.Failed:
		fmt.Fprintf(w, "failed at step %d, t = %.2f yr: %v\n", s.Step, s.T, s.Err())
	default:
		fmt.Fprintf(w, "stopped at step %d, t = %.2f yr\n", s.Step, s.T)
	}
	if s.Degraded() {
		fmt.Fprintf(w, "warning: %d output events lost to i/o errors\n", len(s.IOErrors))
	}

	m := s.Model
	for _, metric := range diag.Defaults() {
		fmt.Fprintf(w, "  %-18s %.6g\n", metric.Name(), metric.Compute(m.Grid, m.Fields))
	}
	return err
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	files, err := snapshot.List(args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTEP\tTIME\tFIELDS")
	for _, f := range files {
		s, err := snapshot.Load(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%d\n", filepath.Base(f), s.Step, s.Time, len(s.Fields))
	}
	return w.Flush()
}

func plotSnapshot(cmd *cobra.Command, args []string) error {
	s, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}
	var out string
	if plotField == "" {
		out = viz.Geometry(s, plotWidth, plotHeight)
	} else {
		out = viz.Profile(s, plotField, plotWidth, plotHeight)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// gridOf rebuilds the grid a snapshot was captured on.
func gridOf(s *snapshot.Snap) (*grid.Grid, error) {
	return grid.New(s.Nx, s.Ny, s.Dx, s.Dy)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	files, err := snapshot.List(args[0])
	if err != nil {
		return err
	}
	rec := diag.NewRecorder(diag.SnapshotMetrics()...)
	for _, path := range files {
		s, err := snapshot.Load(path)
		if err != nil {
			return err
		}
		st := field.NewStore(s.Nx, s.Ny)
		if h, ok := s.Field(field.NameThickness); ok {
			st.H.CopyFrom(h)
		}
		if u, ok := s.Field(field.NameU); ok {
			st.U.CopyFrom(u)
		}
		g, err := gridOf(s)
		if err != nil {
			return err
		}
		rec.Observe(g, st, s.Time, s.Step)
	}
	return rec.WriteCSV(cmd.OutOrStdout())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Freq = 0 // the live view does not write snapshots
	s, err := cfg.BuildSimulation()
	if err != nil {
		return err
	}
	model := viz.NewLive(s, time.Duration(frameMs)*time.Millisecond)
	_, err = tea.NewProgram(model).Run()
	return err
}
