// Package automation replays scripted pointer scenarios and runs batches of
// headless sessions: parameter sweeps and Monte Carlo seed trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/logging"
	"github.com/san-kum/orbits/internal/metrics"
	"github.com/san-kum/orbits/internal/sim"
)

var validate = validator.New()

var ErrUnknownParam = errors.New("orbits: unknown sweep parameter")

// ErrEventOutOfRange marks a scenario event scheduled at or after the last
// frame, where it could never fire.
var ErrEventOutOfRange = errors.New("orbits: scenario event after last frame")

// Scenario is a scripted pointer session. Events fire before the step of
// the frame they name; frames are FrameMS apart on the pointer clock.
type Scenario struct {
	Name        string  `yaml:"name" validate:"required"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset" validate:"omitempty,oneof=golden about binary"`
	Seed        int64   `yaml:"seed"`
	Steps       int     `yaml:"steps" validate:"gte=1"`
	FrameMS     int     `yaml:"frame_ms" validate:"gte=1"`
	RecordEvery int     `yaml:"record_every" validate:"gte=0"`
	Events      []Event `yaml:"events" validate:"dive"`
}

type Event struct {
	At     int     `yaml:"at" validate:"gte=0"`
	Type   string  `yaml:"type" validate:"required,oneof=down move up cancel resize"`
	Node   int     `yaml:"node"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Preset: config.DefaultPreset, FrameMS: 16}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// Validate checks field constraints and that every event falls inside
// [0, Steps).
func (sc *Scenario) Validate() error {
	if err := validate.Struct(sc); err != nil {
		return err
	}
	for i, ev := range sc.Events {
		if ev.At >= sc.Steps {
			return fmt.Errorf("event %d (%s at %d, steps %d): %w", i, ev.Type, ev.At, sc.Steps, ErrEventOutOfRange)
		}
	}
	return nil
}

type ScenarioResult struct {
	Name     string
	Steps    int
	Captures []dynamo.NodeID
	Flings   []dynamo.Vec2
	Trace    []sim.Sample
	Final    []dynamo.Node
	Metrics  map[string]float64
}

// RunScenario builds a session from the scenario's preset and drives it
// frame by frame, injecting the scripted pointer events.
func RunScenario(ctx context.Context, sc *Scenario, logger *slog.Logger) (*ScenarioResult, error) {
	logger = logging.OrNop(logger)

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	cfg := config.GetPreset(sc.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownPreset, sc.Preset)
	}
	cfg.Seed = sc.Seed

	s, err := cfg.NewSession(logger)
	if err != nil {
		return nil, err
	}
	defer s.Stop()

	energy := metrics.NewEnergy()
	s.AddMetric(energy)

	events := append([]Event(nil), sc.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	res := &ScenarioResult{Name: sc.Name, Metrics: make(map[string]float64)}
	clock := time.Unix(0, 0)
	frame := time.Duration(sc.FrameMS) * time.Millisecond
	next := 0

	if sc.RecordEvery > 0 {
		res.Trace = append(res.Trace, sim.Sample{Step: 0, Nodes: s.Nodes()})
	}

	for step := 0; step < sc.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		now := clock.Add(time.Duration(step) * frame)
		for next < len(events) && events[next].At == step {
			apply(s, events[next], now, res, logger)
			next++
		}

		if _, err := s.Step(); err != nil {
			return res, err
		}
		res.Steps++

		if sc.RecordEvery > 0 && res.Steps%sc.RecordEvery == 0 {
			res.Trace = append(res.Trace, sim.Sample{Step: res.Steps, Nodes: s.Nodes()})
		}
	}

	res.Final = s.Nodes()
	res.Metrics[energy.Name()] = energy.Value()
	logger.Info("scenario complete", "name", sc.Name, "steps", res.Steps, "flings", len(res.Flings))
	return res, nil
}

func apply(s *sim.Session, ev Event, now time.Time, res *ScenarioResult, logger *slog.Logger) {
	p := dynamo.Vec2{X: ev.X, Y: ev.Y}

	switch ev.Type {
	case "down":
		if ev.Node > 0 {
			if s.PointerDown(dynamo.NodeID(ev.Node), p, now) {
				res.Captures = append(res.Captures, dynamo.NodeID(ev.Node))
			}
		} else if id, ok := s.PointerDownAt(p, now); ok {
			res.Captures = append(res.Captures, id)
		}
	case "move":
		s.PointerMove(p, now)
	case "up":
		if _, held := s.Captured(); held {
			res.Flings = append(res.Flings, s.PointerUp(p, now))
		}
	case "cancel":
		s.Cancel()
	case "resize":
		if !s.Resize(ev.Width, ev.Height) {
			logger.Warn("ignored degenerate resize", "width", ev.Width, "height", ev.Height)
		}
	}
}

// ParameterSweep runs one headless session per value of a physics or
// interaction parameter, evenly spaced over [ParamMin, ParamMax].
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Steps     int
	Seed      int64
}

type SweepResult struct {
	ParamValue float64
	MeanEnergy float64
	PeakSpeed  float64
	Bounces    int
	Final      []dynamo.Node
}

// SetParam assigns a named tunable on cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "g":
		cfg.Physics.G = v
	case "friction":
		cfg.Physics.Friction = v
	case "bounce":
		cfg.Physics.Bounce = v
	case "padding":
		cfg.Physics.Padding = v
	case "min_distance":
		cfg.Physics.MinDistance = v
	case "radius_scale":
		cfg.Physics.RadiusScale = v
	case "fling":
		cfg.Interaction.Fling = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	logger = logging.OrNop(logger)
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value, got %d", sweep.NumSteps)
	}

	base := config.GetPreset(sweep.Preset)
	if base == nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownPreset, sweep.Preset)
	}
	base.Seed = sweep.Seed

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		if err := SetParam(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		s, err := cfg.NewSession(logger)
		if err != nil {
			return nil, err
		}
		energy, peak, bounces := metrics.NewEnergy(), metrics.NewPeakSpeed(), metrics.NewBounces()
		s.AddMetric(energy)
		s.AddMetric(peak)
		s.AddMetric(bounces)

		result, err := s.Run(ctx, sim.RunConfig{Steps: sweep.Steps, Seed: sweep.Seed})
		s.Stop()
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			MeanEnergy: energy.Value(),
			PeakSpeed:  peak.Value(),
			Bounces:    int(bounces.Value()),
			Final:      result.Final,
		})

		logger.Info("sweep point", "index", i+1, "of", sweep.NumSteps, "param", sweep.ParamName, "value", paramVal)
	}

	return results, nil
}

// MonteCarloConfig runs NumTrials seeds of a preset concurrently.
type MonteCarloConfig struct {
	Preset    string
	NumTrials int
	Steps     int
	Seed      int64
}

type MonteCarloResult struct {
	TrialID    int
	Seed       int64
	Final      []dynamo.Node
	MeanEnergy float64
	Contained  bool
}

// RunMonteCarlo executes multiple seeded trials and checks each stayed
// inside its walls.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	logger = logging.OrNop(logger)
	base := config.GetPreset(mc.Preset)
	if base == nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownPreset, mc.Preset)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	build := func(seed int64) (*sim.Session, error) {
		cfg := base.Clone()
		cfg.Seed = seed
		s, err := cfg.NewSession(logger)
		if err != nil {
			return nil, err
		}
		s.AddMetric(metrics.NewEnergy())
		s.AddMetric(metrics.NewContainment(cfg.Params()))
		return s, nil
	}

	runs, err := sim.NewEnsemble(build, mc.NumTrials, seed).Run(ctx, sim.RunConfig{Steps: mc.Steps})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			TrialID:    i,
			Seed:       r.Seed,
			Final:      r.Final,
			MeanEnergy: r.Metrics["kinetic_energy"],
			Contained:  r.Metrics["containment"] == 1,
		}
	}

	logger.Info("monte carlo complete", "trials", len(results))
	return results, nil
}

// MonteCarloStats counts trials that stayed contained and those that did not.
func MonteCarloStats(results []MonteCarloResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
