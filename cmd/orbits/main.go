package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/gui"
	"github.com/san-kum/orbits/internal/logging"
	"github.com/san-kum/orbits/internal/metrics"
	"github.com/san-kum/orbits/internal/sim"
	"github.com/san-kum/orbits/internal/viz"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	logJSON     bool
	logFile     string
	metricsAddr string

	seed        int64
	steps       int
	count       int
	frameRate   int
	recordEvery int

	outFile   string
	phaseNode int
	phaseAxis string
	sweepMin  float64
	sweepMax  float64
	sweepN    int
	numTrials int
)

var (
	logger   = logging.Nop()
	exporter *metrics.Exporter
)

// main registers the orbits commands. With no subcommand the windowed
// preset menu opens.
func main() {
	rootCmd := &cobra.Command{
		Use:               "orbits",
		Short:             "interactive gravitational node field",
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			gui.RunInteractive(buildSession, logger)
			return nil
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".orbits", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $"+logging.EnvLevel)
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&logFile, "log-file", "", "log destination; terminal views default to orbits.log")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSessionFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to run")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep every n-th step in the trace")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a preset in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSessionFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal preset menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(buildSession)
		},
	}

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "run a preset in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			gui.Run(cfg, buildSession, logger)
			return nil
		},
	}
	addSessionFlags(guiCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy and node speeds of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "energy spectrum, divergence and phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&phaseNode, "node", 1, "node id for the phase portrait")
	analyzeCmd.Flags().StringVar(&phaseAxis, "axis", "x", "phase portrait axis (x or y)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [preset]",
		Short: "write the initial node set of a preset as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	addSessionFlags(exportJSONCmd)
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render the final frame of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	replayCmd := &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "drive a session with a scripted pointer scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  replayScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep a physics parameter over a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSessionFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 10, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run seeded trials concurrently and report containment",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "first seed (default: time based)")
	monteCarloCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per trial")
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 16, "number of trials")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper across node counts",
		RunE:  benchStepper,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-8s %s\n", name, config.PresetDescriptions[name])
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, tuiCmd, guiCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd,
		snapshotCmd, replayCmd, sweepCmd, monteCarloCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 0, "layout seed")
	cmd.Flags().IntVar(&count, "count", 0, "node count for the golden preset")
}

// setup builds the logger and, when requested, the metrics endpoint. The
// terminal views own stdout, so their logs go to a file.
func setup(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.EnvLevel)
	}

	switch name := cmd.Name(); {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logger = logging.New(f, logging.ParseLevel(level), logJSON)
	case name == "live" || name == "tui":
		f, err := tea.LogToFile("orbits.log", "orbits")
		if err != nil {
			return err
		}
		logger = logging.New(f, logging.ParseLevel(level), logJSON)
	default:
		logger = logging.New(os.Stderr, logging.ParseLevel(level), logJSON)
	}

	if metricsAddr != "" {
		exporter = metrics.NewExporter()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(exporter.Registry(), promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", metricsAddr, "err", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}
	return nil
}

// buildSession creates a session for cfg and attaches the metrics exporter
// when one is running.
func buildSession(cfg *config.Config) (*sim.Session, error) {
	s, err := cfg.NewSession(logger)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		s.AddObserver(exporter)
	}
	return s, nil
}

// loadConfig resolves the configuration from --config, a preset argument
// and the session flags, in that order of precedence from lowest.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		preset := config.GetPreset(args[0])
		if preset == nil {
			return nil, fmt.Errorf("%w: %q (try `orbits presets`)", config.ErrUnknownPreset, args[0])
		}
		if configFile == "" {
			cfg = preset
		} else {
			cfg.Preset = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved", slog.String("preset", cfg.Preset), slog.Int64("seed", cfg.Seed))
	return cfg, nil
}
