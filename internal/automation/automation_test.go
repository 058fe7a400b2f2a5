package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbits/internal/config"
)

const flingScenario = `
name: fling-a
description: grab the light node of the pair and throw it right
preset: binary
steps: 30
frame_ms: 16
record_every: 10
events:
  - {at: 2, type: up, x: 445, y: 300}
  - {at: 0, type: down, node: 1, x: 425, y: 300}
  - {at: 1, type: move, x: 425, y: 300}
  - {at: 5, type: resize, width: 0, height: 0}
  - {at: 29, type: cancel}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, flingScenario))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "fling-a" || sc.Preset != "binary" || len(sc.Events) != 5 {
		t.Errorf("unexpected scenario %+v", sc)
	}
}

func TestLoadScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", "steps: 10\n"},
		{"bad event", "name: x\nsteps: 10\nevents:\n  - {at: 0, type: jump}\n"},
		{"bad preset", "name: x\nsteps: 10\npreset: nope\n"},
		{"zero steps", "name: x\n"},
		{"event past end", "name: x\nsteps: 10\nevents:\n  - {at: 10, type: cancel}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScenario(writeScenario(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, flingScenario))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	res, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Steps != 30 {
		t.Errorf("expected 30 steps, got %d", res.Steps)
	}
	if len(res.Captures) != 1 || res.Captures[0] != 1 {
		t.Errorf("unexpected captures %v", res.Captures)
	}
	if len(res.Flings) != 1 {
		t.Fatalf("expected 1 fling, got %d", len(res.Flings))
	}
	// 20px over one 16ms frame, scaled by 0.02 for a unit mass.
	if want := 20 / 0.016 * 0.02; math.Abs(res.Flings[0].X-want) > 1e-9 {
		t.Errorf("fling vx = %v, want %v", res.Flings[0].X, want)
	}
	if len(res.Trace) != 4 {
		t.Errorf("expected 4 trace samples, got %d", len(res.Trace))
	}
}

func TestScenarioEventOutOfRange(t *testing.T) {
	sc := &Scenario{
		Name: "late", Preset: "binary", Steps: 5, FrameMS: 16,
		Events: []Event{{At: 4, Type: "cancel"}, {At: 5, Type: "cancel"}},
	}
	if _, err := RunScenario(context.Background(), sc, nil); !errors.Is(err, ErrEventOutOfRange) {
		t.Errorf("expected ErrEventOutOfRange, got %v", err)
	}

	sc.Events = sc.Events[:1]
	if _, err := RunScenario(context.Background(), sc, nil); err != nil {
		t.Errorf("event on the last frame rejected: %v", err)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	sc := &Scenario{Name: "idle", Preset: "golden", Steps: 100, FrameMS: 16}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunScenario(ctx, sc, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	results, err := RunSweep(context.Background(), &ParameterSweep{
		Preset:    "golden",
		ParamName: "bounce",
		ParamMin:  0.2,
		ParamMax:  1.0,
		NumSteps:  3,
		Steps:     50,
		Seed:      1,
	}, nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []float64{0.2, 0.6, 1.0} {
		if math.Abs(results[i].ParamValue-want) > 1e-12 {
			t.Errorf("value %d = %v, want %v", i, results[i].ParamValue, want)
		}
		if len(results[i].Final) != 5 {
			t.Errorf("result %d has %d nodes", i, len(results[i].Final))
		}
	}
}

func TestRunSweepErrors(t *testing.T) {
	_, err := RunSweep(context.Background(), &ParameterSweep{Preset: "golden", ParamName: "spin", NumSteps: 2, Steps: 1}, nil)
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}

	_, err = RunSweep(context.Background(), &ParameterSweep{Preset: "nope", ParamName: "g", NumSteps: 2, Steps: 1}, nil)
	if !errors.Is(err, config.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}

	// Friction above one fails validation.
	_, err = RunSweep(context.Background(), &ParameterSweep{Preset: "golden", ParamName: "friction", ParamMin: 1.5, ParamMax: 2, NumSteps: 2, Steps: 1}, nil)
	if err == nil {
		t.Error("expected validation error")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Preset:    "golden",
		NumTrials: 6,
		Steps:     100,
		Seed:      40,
	}, nil)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}

	if len(results) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(40+i) {
			t.Errorf("trial %d seed %d", i, r.Seed)
		}
	}

	contained, escaped := MonteCarloStats(results)
	if contained != 6 || escaped != 0 {
		t.Errorf("contained %d escaped %d", contained, escaped)
	}
}
