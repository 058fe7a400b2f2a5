package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbits/internal/analysis"
	"github.com/san-kum/orbits/internal/automation"
	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/export"
	"github.com/san-kum/orbits/internal/metrics"
	"github.com/san-kum/orbits/internal/physics"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/scene"
	"github.com/san-kum/orbits/internal/sim"
	"github.com/san-kum/orbits/internal/storage"
	"github.com/san-kum/orbits/internal/store"
	"github.com/san-kum/orbits/internal/viz"
)

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := buildSession(cfg)
	if err != nil {
		return err
	}
	defer s.Stop()

	s.AddMetric(metrics.NewEnergy())
	s.AddMetric(metrics.NewPeakSpeed())
	s.AddMetric(metrics.NewContainment(cfg.Params()))
	s.AddMetric(metrics.NewBounces())
	s.AddMetric(metrics.NewSanitized())

	ctx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	result, err := s.Run(ctx, sim.RunConfig{Steps: cfg.Steps, RecordEvery: recordEvery, Seed: cfg.Seed})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d in %v\n", result.Steps, elapsed)
	fmt.Printf("bounces: %d  sanitized: %d\n", result.Bounces, result.Sanitized)
	for _, name := range []string{"kinetic_energy", "peak_speed", "containment"} {
		fmt.Printf("%s: %.4f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(cfg, buildSession)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSEED\tSTEPS\tNODES\tBOUNCES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Steps,
			run.Nodes,
			run.Bounces,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) < 2 {
		return fmt.Errorf("run %s has too few samples to plot", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(trace))

	energy := make([]float64, len(trace))
	for i, s := range trace {
		energy[i] = physics.KineticEnergy(s.Nodes)
	}
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()

	series := make([][]float64, len(trace[0].Nodes))
	labels := make([]string, len(trace[0].Nodes))
	for i, n := range trace[0].Nodes {
		labels[i] = n.Label
	}
	for _, s := range trace {
		for i, n := range s.Nodes {
			if i < len(series) {
				series[i] = append(series[i], n.Speed())
			}
		}
	}
	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(plotColors(len(series))...),
		asciigraph.SeriesLegends(labels...),
		asciigraph.Caption("node speed"),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) < 2 {
		return fmt.Errorf("run %s has too few samples to analyze", runID)
	}

	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	fmt.Printf("run: %s\n\n", meta.ID)

	if freq, power, ok := analysis.EnergySpectrum(trace).Peak(); ok {
		fmt.Printf("energy peak: %.4f cycles/sample (period %.1f samples, power %.3g)\n", freq, 1/freq, power)
	} else {
		fmt.Println("energy peak: none")
	}

	g := physics.NewGravity(cfg.Params(), logger)
	lambda := analysis.LyapunovExponent(g, trace[0].Nodes, cfg.Bounds(), meta.Steps, 1e-6)
	fmt.Printf("lyapunov exponent: %.5f per step\n\n", lambda)

	portrait, err := analysis.GeneratePhasePortrait(trace, dynamo.NodeID(phaseNode), phaseAxis)
	if err != nil {
		return err
	}
	fmt.Printf("phase portrait: node %d, %s vs v%s\n", phaseNode, phaseAxis, phaseAxis)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 80, 20))
	return nil
}

func plotColors(n int) []asciigraph.AnsiColor {
	palette := []asciigraph.AnsiColor{asciigraph.Yellow, asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Magenta, asciigraph.Cyan}
	colors := make([]asciigraph.AnsiColor, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return writeIndentedJSON(os.Stdout, meta)
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	nodes, err := cfg.BuildNodes()
	if err != nil {
		return err
	}
	st, err := store.New(nodes, cfg.Bounds())
	if err != nil {
		return err
	}
	if outFile != "" {
		return st.ExportJSONFile(outFile)
	}
	return st.ExportJSON(os.Stdout)
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	proj := projector.New(cfg.Style(), cfg.Params())
	frame := proj.Project(trace[len(trace)-1].Nodes, cfg.Bounds())
	svg := export.FrameToSVG(frame, export.SVGOptions{
		Trails: export.TrailsFromTrace(trace),
		Labels: true,
	})

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func replayScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	res, err := automation.RunScenario(ctx, sc, logger)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", res.Name)
	fmt.Printf("steps: %d  captures: %d  flings: %d\n", res.Steps, len(res.Captures), len(res.Flings))
	for i, v := range res.Flings {
		fmt.Printf("  fling %d: node %d  v=(%.3f, %.3f)\n", i+1, res.Captures[min(i, len(res.Captures)-1)], v.X, v.Y)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tX\tY\tVX\tVY")
	for _, n := range res.Final {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.3f\t%.3f\n", n.Label, n.Pos.X, n.Pos.Y, n.Vel.X, n.Vel.Y)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Preset:    cfg.Preset,
		ParamName: args[0],
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
		Steps:     steps,
		Seed:      cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN KE\tPEAK SPEED\n", args[0])
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\n", r.ParamValue, r.MeanEnergy, r.PeakSpeed)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	preset := config.DefaultPreset
	if len(args) > 0 {
		preset = args[0]
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Preset:    preset,
		NumTrials: numTrials,
		Steps:     steps,
		Seed:      seed,
	}, logger)
	if err != nil {
		return err
	}

	contained, escaped := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  contained: %d  escaped: %d\n", len(results), contained, escaped)

	energies := make([]float64, len(results))
	for i, r := range results {
		energies[i] = r.MeanEnergy
	}
	if len(energies) > 1 {
		fmt.Println(asciigraph.Plot(energies, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("mean kinetic energy per trial")))
	}
	return nil
}

// benchStepper times the gravity stepper on golden layouts of growing size.
func benchStepper(cmd *cobra.Command, args []string) error {
	const benchSteps = 2000
	bounds := dynamo.Bounds{Width: dynamo.DefaultWidth, Height: dynamo.DefaultHeight}
	g := physics.NewGravity(physics.DefaultParams(), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{2, 5, 10, 25, 50} {
		nodes := scene.Golden(n, bounds, rand.New(rand.NewSource(1)))
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			nodes, _ = g.Step(nodes, bounds)
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, benchSteps, elapsed, float64(benchSteps)/elapsed.Seconds())
	}
	return w.Flush()
}
