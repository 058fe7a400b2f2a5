package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "golden" {
		t.Errorf("expected preset golden, got %s", cfg.Preset)
	}
	if cfg.Params() != physics.DefaultParams() {
		t.Errorf("default params drifted: %+v", cfg.Params())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown preset", func(c *Config) { c.Preset = "chaos" }, "Preset"},
		{"zero fps", func(c *Config) { c.FPS = 0 }, "FPS"},
		{"friction above one", func(c *Config) { c.Physics.Friction = 1.5 }, "Friction"},
		{"bounce negative", func(c *Config) { c.Physics.Bounce = -0.1 }, "Bounce"},
		{"zero min distance", func(c *Config) { c.Physics.MinDistance = 0 }, "MinDistance"},
		{"zero pull cap", func(c *Config) { c.Render.PullCap = 0 }, "PullCap"},
		{"zero node mass", func(c *Config) { c.Nodes = []NodeConfig{{ID: 1, Mass: 0}} }, "Mass"},
		{"bad colour", func(c *Config) { c.Nodes = []NodeConfig{{ID: 1, Mass: 1, Color: "red"}} }, "Color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidateDuplicateNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = []NodeConfig{{ID: 1, Mass: 1}, {ID: 1, Mass: 2}}

	if err := cfg.Validate(); !errors.Is(err, dynamo.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbits.yaml")
	cfg := GetPreset("about")
	cfg.Seed = 99

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Preset != "about" || loaded.Seed != 99 || loaded.Physics.RadiusScale != 4 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbits.yaml")
	data := "preset: binary\nphysics:\n  g: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Physics.G != 2 || cfg.Physics.Bounce != 0.7 || cfg.FPS != DefaultFPS {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbits.yaml")
	if err := os.WriteFile(path, []byte("fps: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for fps 0")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	a := GetPreset("golden")
	b := GetPreset("golden")
	if a == nil || a == b {
		t.Fatal("GetPreset should return fresh copies")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}

	names := ListPresets()
	if strings.Join(names, ",") != "about,binary,golden" {
		t.Errorf("unexpected presets %v", names)
	}
	for _, n := range names {
		if PresetDescriptions[n] == "" {
			t.Errorf("preset %s has no description", n)
		}
	}
}

func TestBuildNodes(t *testing.T) {
	tests := []struct {
		preset string
		count  int
	}{
		{"golden", 5},
		{"about", 5},
		{"binary", 2},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			nodes, err := GetPreset(tt.preset).BuildNodes()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if len(nodes) != tt.count {
				t.Errorf("expected %d nodes, got %d", tt.count, len(nodes))
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Preset = "chaos"
	if _, err := cfg.BuildNodes(); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestGoldenFillsViewport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	wide := cfg.WithViewport(1920, 1080)

	s, err := wide.NewSession(nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer s.Stop()

	if b := s.Bounds(); b.Width != 1920 || b.Height != 1080 {
		t.Errorf("bounds %+v, want 1920x1080", b)
	}
	var maxX float64
	for _, n := range s.Nodes() {
		maxX = max(maxX, n.Pos.X)
		if n.Pos.X < 80 || n.Pos.X > 1920-80 || n.Pos.Y < 80 || n.Pos.Y > 1080-80 {
			t.Errorf("node %d at %v outside the seeded area", n.ID, n.Pos)
		}
	}
	if maxX <= 900 {
		t.Errorf("nodes bunched in the default viewport, max x = %v", maxX)
	}
	if cfg.Width != 0 || cfg.Height != 0 {
		t.Error("WithViewport modified the receiver")
	}
}

func TestWithViewportIgnoresBadSizes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 640, 480
	for _, dims := range [][2]float64{{0, 100}, {100, -1}, {math.NaN(), 100}, {math.Inf(1), 100}} {
		got := cfg.WithViewport(dims[0], dims[1])
		if got.Width != 640 || got.Height != 480 {
			t.Errorf("WithViewport(%v) = %vx%v", dims, got.Width, got.Height)
		}
	}
}

func TestBuildExplicitNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = []NodeConfig{
		{ID: 7, Mass: 2, X: 100, Y: 120, VX: 1},
		{ID: 9, Mass: 1, X: 300, Y: 120, Label: "sun", Color: "#ffaa00"},
	}

	nodes, err := cfg.BuildNodes()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if nodes[0].ID != 7 || nodes[0].Label != "A" || nodes[0].Color == "" || nodes[0].Vel.X != 1 {
		t.Errorf("unexpected node %+v", nodes[0])
	}
	if nodes[1].Label != "sun" || nodes[1].Color != "#ffaa00" {
		t.Errorf("unexpected node %+v", nodes[1])
	}
}

func TestNewSession(t *testing.T) {
	s, err := GetPreset("binary").NewSession(nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := s.Step(); err != nil {
		t.Errorf("step: %v", err)
	}
	if len(s.Frame().Edges) != 1 {
		t.Error("binary session should project one edge")
	}
}
