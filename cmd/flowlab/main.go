package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/flowlab/internal/analysis"
	"github.com/san-kum/flowlab/internal/compute"
	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/export"
	"github.com/san-kum/flowlab/internal/field"
	"github.com/san-kum/flowlab/internal/fluid"
	"github.com/san-kum/flowlab/internal/gui"
	"github.com/san-kum/flowlab/internal/particles"
	"github.com/san-kum/flowlab/internal/store"
	"github.com/san-kum/flowlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	width      int
	height     int
	ticks      int
	seed       int64
	saveRun    bool
	useGL      bool
	mode       string
	snapshot   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowlab",
		Short: "interactive incompressible fluid sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			return gui.RunInteractive(p, useGL)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flowlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&width, "width", 0, "grid width (overrides config)")
	rootCmd.PersistentFlags().IntVar(&height, "height", 0, "grid height (overrides config)")
	rootCmd.Flags().BoolVar(&useGL, "gl", false, "solve pressure on the GPU")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless with a scripted stir gesture",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 600, "number of ticks")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "save diagnostics to the data directory")
	runCmd.Flags().StringVar(&mode, "mode", "", "display mode override")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final frame as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			// Terminal cells are scarce; a full-size grid buys nothing.
			if !cmd.Flags().Changed("width") && configFile == "" {
				p.Width, p.Height = 128, 96
			}
			return viz.Run(p)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := store.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	exportConfigCmd := &cobra.Command{
		Use:   "export-config [path]",
		Short: "write the default configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], p); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, analyzeCmd, presetsCmd, exportConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadParams resolves the effective parameters: defaults, then preset,
// then config file, then explicit flags, later layers winning.
func loadParams(cmd *cobra.Command) (config.Params, error) {
	p := config.DefaultParams()

	if preset != "" {
		pp := config.GetPreset(preset)
		if pp == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p = *pp
	}

	if configFile != "" {
		cp, err := config.Load(configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		p = *cp
	}

	if width > 0 {
		p.Width = width
	}
	if height > 0 {
		p.Height = height
	}
	if mode != "" {
		p.DisplayMode = config.DisplayMode(mode)
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// stirScript drives a wandering circular gesture over the grid. Same
// seed, same gesture: headless runs are reproducible.
type stirScript struct {
	rng    *rand.Rand
	phase  float64
	drift  float64
	window field.Vec2
	last   field.Vec2
}

func newStirScript(seed int64, w, h int) *stirScript {
	return &stirScript{
		rng:    rand.New(rand.NewSource(seed)),
		window: field.Vec2{X: float64(w), Y: float64(h)},
	}
}

func (s *stirScript) apply(solver *fluid.Solver, p config.Params) {
	s.phase += 0.04 + s.rng.Float64()*0.02
	s.drift += (s.rng.Float64() - 0.5) * 0.1

	pos := field.Vec2{
		X: s.window.X * (0.5 + 0.3*math.Cos(s.phase+s.drift)),
		Y: s.window.Y * (0.5 + 0.3*math.Sin(s.phase)),
	}
	solver.AddForce(pos, s.window, p)
	s.last = pos
}

func runHeadless(cmd *cobra.Command, args []string) error {
	p, err := loadParams(cmd)
	if err != nil {
		return err
	}

	solver, err := fluid.NewSolver(p)
	if err != nil {
		return err
	}
	script := newStirScript(seed, p.Width, p.Height)
	tracer := particles.NewSystem(seed)

	fmt.Printf("running %dx%d grid for %d ticks (seed %d)...\n", p.Width, p.Height, ticks, seed)
	start := time.Now()

	series := store.Series{
		Energy:      make([]float64, 0, ticks),
		Density:     make([]float64, 0, ticks),
		ResidualMax: make([]float64, 0, ticks),
	}
	for i := 0; i < ticks; i++ {
		script.apply(solver, p)
		if err := solver.Step(p); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}

		if p.Particles.Enabled {
			if i%15 == 0 {
				tracer.Spawn(script.last, p.Particles.SpawnCount, p.Particles.SpawnRadius)
			}
			tracer.Update(p, solver.SampleVelocity, script.window)
		}

		g := solver.Grid()
		_, resMax := analysis.ResidualStats(g)
		series.Energy = append(series.Energy, analysis.KineticEnergy(g))
		series.Density = append(series.Density, analysis.TotalDensity(g))
		series.ResidualMax = append(series.ResidualMax, resMax)
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v (%.0f ticks/sec)\n\n", elapsed, float64(ticks)/elapsed.Seconds())

	graph := asciigraph.Plot(series.Energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTDDEV\tMIN\tMAX")
	printSummary(w, "energy", analysis.Summarize(series.Energy))
	printSummary(w, "density", analysis.Summarize(series.Density))
	printSummary(w, "residual_max", analysis.Summarize(series.ResidualMax))
	if err := w.Flush(); err != nil {
		return err
	}

	if snapshot != "" {
		var svg string
		if p.DisplayMode == config.ModeParticlesOnly {
			svg = export.TrailsSVG(tracer.Vertices(p.Particles.ParticleSize), p.Width, p.Height)
		} else {
			svg = export.FieldSVG(solver.Display(), p.Width, p.Height, 2.0)
		}
		if err := os.WriteFile(snapshot, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", snapshot)
	}

	if !saveRun {
		return nil
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(p, seed, compute.GetBackend().Name(), series)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func printSummary(w *tabwriter.Writer, name string, s analysis.SeriesSummary) {
	fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\n", name, s.Mean, s.StdDev, s.Min, s.Max)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tGRID\tTICKS\tBACKEND\tMEAN ENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\t%.4g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Width, run.Params.Height,
			run.Ticks,
			run.Backend,
			run.Summary["energy"].Mean,
		)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Energy) < 2 {
		return fmt.Errorf("not enough data to analyze")
	}

	fmt.Printf("frequency analysis: %s (%d ticks)\n\n", meta.ID, meta.Ticks)

	ps := analysis.PowerSpectrum(series.Energy)
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("energy power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}
	fmt.Printf("dominant bin: %d (cycle length %.1f ticks)\n", maxIdx, float64(2*len(ps))/float64(max(maxIdx, 1)))
	return nil
}
