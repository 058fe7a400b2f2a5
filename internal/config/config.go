package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/interaction"
	"github.com/san-kum/orbits/internal/physics"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/scene"
	"github.com/san-kum/orbits/internal/sim"
	"github.com/san-kum/orbits/internal/store"
)

const (
	DefaultPreset = "golden"
	DefaultCount  = 5
	DefaultFPS    = 60
	DefaultSteps  = 600
)

var ErrUnknownPreset = errors.New("orbits: unknown preset")

var validate = validator.New()

type Config struct {
	Preset      string            `yaml:"preset" validate:"omitempty,oneof=golden about binary"`
	Seed        int64             `yaml:"seed"`
	Count       int               `yaml:"count" validate:"gte=0,lte=64"`
	FPS         int               `yaml:"fps" validate:"gte=1,lte=240"`
	Steps       int               `yaml:"steps" validate:"gte=0"`
	Width       float64           `yaml:"width" validate:"gte=0"`
	Height      float64           `yaml:"height" validate:"gte=0"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Render      RenderConfig      `yaml:"render"`
	Nodes       []NodeConfig      `yaml:"nodes,omitempty" validate:"omitempty,dive"`
}

type PhysicsConfig struct {
	G           float64 `yaml:"g" validate:"gte=0"`
	Friction    float64 `yaml:"friction" validate:"gt=0,lte=1"`
	Bounce      float64 `yaml:"bounce" validate:"gte=0,lte=1"`
	Padding     float64 `yaml:"padding" validate:"gte=0"`
	MinDistance float64 `yaml:"min_distance" validate:"gt=0"`
	BaseRadius  float64 `yaml:"base_radius" validate:"gte=0"`
	RadiusScale float64 `yaml:"radius_scale" validate:"gte=0"`
}

type InteractionConfig struct {
	Fling float64 `yaml:"fling" validate:"gte=0"`
}

type RenderConfig struct {
	BaseRadius     float64 `yaml:"base_radius" validate:"gte=0"`
	RadiusPerMass  float64 `yaml:"radius_per_mass" validate:"gte=0"`
	MinFieldRadius float64 `yaml:"min_field_radius" validate:"gte=0"`
	FieldPerMass   float64 `yaml:"field_per_mass" validate:"gte=0"`
	PullCap        float64 `yaml:"pull_cap" validate:"gt=0"`
	ThicknessScale float64 `yaml:"thickness_scale" validate:"gte=0"`
}

// NodeConfig describes one node of an explicit layout.
type NodeConfig struct {
	ID    int     `yaml:"id" validate:"gte=1"`
	Label string  `yaml:"label" validate:"max=8"`
	Color string  `yaml:"color" validate:"omitempty,hexcolor"`
	Mass  float64 `yaml:"mass" validate:"gt=0"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	i := interaction.DefaultOptions()
	s := projector.DefaultStyle()

	return &Config{
		Preset: DefaultPreset,
		Count:  DefaultCount,
		FPS:    DefaultFPS,
		Steps:  DefaultSteps,
		Physics: PhysicsConfig{
			G:           p.G,
			Friction:    p.Friction,
			Bounce:      p.Bounce,
			Padding:     p.Padding,
			MinDistance: p.MinDistance,
			BaseRadius:  p.BaseRadius,
			RadiusScale: p.RadiusScale,
		},
		Interaction: InteractionConfig{Fling: i.Fling},
		Render: RenderConfig{
			BaseRadius:     s.BaseRadius,
			RadiusPerMass:  s.RadiusPerMass,
			MinFieldRadius: s.MinFieldRadius,
			FieldPerMass:   s.FieldPerMass,
			PullCap:        s.PullCap,
			ThicknessScale: s.ThicknessScale,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field ranges and reports the first violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	seen := make(map[int]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("Nodes: %w: %d", dynamo.ErrDuplicateID, n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "gte", "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "lte", "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "hexcolor":
			return fmt.Errorf("%s: must be a hex colour", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}

func (c *Config) Bounds() dynamo.Bounds {
	return dynamo.Bounds{Width: c.Width, Height: c.Height}
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		G:           c.Physics.G,
		Friction:    c.Physics.Friction,
		Bounce:      c.Physics.Bounce,
		Padding:     c.Physics.Padding,
		MinDistance: c.Physics.MinDistance,
		BaseRadius:  c.Physics.BaseRadius,
		RadiusScale: c.Physics.RadiusScale,
	}
}

func (c *Config) InteractionOptions() interaction.Options {
	return interaction.Options{Padding: c.Physics.Padding, Fling: c.Interaction.Fling}
}

func (c *Config) Style() projector.Style {
	return projector.Style{
		BaseRadius:     c.Render.BaseRadius,
		RadiusPerMass:  c.Render.RadiusPerMass,
		MinFieldRadius: c.Render.MinFieldRadius,
		FieldPerMass:   c.Render.FieldPerMass,
		PullCap:        c.Render.PullCap,
		ThicknessScale: c.Render.ThicknessScale,
	}
}

func (c *Config) SessionOptions(logger *slog.Logger) sim.Options {
	return sim.Options{
		Params:      c.Params(),
		Interaction: c.InteractionOptions(),
		Style:       c.Style(),
		Logger:      logger,
	}
}

// BuildNodes returns the explicit node list when one is configured, and the
// preset layout otherwise.
func (c *Config) BuildNodes() ([]dynamo.Node, error) {
	if len(c.Nodes) > 0 {
		nodes := make([]dynamo.Node, len(c.Nodes))
		for i, n := range c.Nodes {
			color := n.Color
			if color == "" {
				color = scene.Color(i)
			}
			label := n.Label
			if label == "" {
				label = scene.Label(i)
			}
			nodes[i] = dynamo.Node{
				ID:    dynamo.NodeID(n.ID),
				Pos:   dynamo.Vec2{X: n.X, Y: n.Y},
				Vel:   dynamo.Vec2{X: n.VX, Y: n.VY},
				Mass:  n.Mass,
				Color: color,
				Label: label,
			}
		}
		return nodes, nil
	}

	switch c.Preset {
	case "", "golden":
		count := c.Count
		if count == 0 {
			count = DefaultCount
		}
		return scene.Golden(count, c.Bounds(), rand.New(rand.NewSource(c.Seed))), nil
	case "about":
		return scene.About(), nil
	case "binary":
		return scene.Binary(c.Bounds()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, c.Preset)
	}
}

// NewSession builds the node store and a session around it.
func (c *Config) NewSession(logger *slog.Logger) (*sim.Session, error) {
	nodes, err := c.BuildNodes()
	if err != nil {
		return nil, err
	}
	st, err := store.New(nodes, c.Bounds())
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	return sim.New(st, c.SessionOptions(logger)), nil
}

// WithViewport returns a copy laid out for a measured w x h viewport, so
// size-dependent presets spread over the real drawing area. Sizes that are
// not positive and finite leave the configured size in place.
func (c *Config) WithViewport(w, h float64) *Config {
	cp := c.Clone()
	if w > 0 && h > 0 && !math.IsInf(w, 0) && !math.IsInf(h, 0) {
		cp.Width, cp.Height = w, h
	}
	return cp
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Nodes = append([]NodeConfig(nil), c.Nodes...)
	return &cp
}
