package sim

import (
	"fmt"

	"github.com/san-kum/orbits/internal/dynamo"
)

// Stepper advances a node set by one frame. physics.Gravity is the
// production implementation.
type Stepper interface {
	Step(prev []dynamo.Node, bounds dynamo.Bounds, frozen ...dynamo.NodeID) ([]dynamo.Node, dynamo.StepStats)
}

type Metric interface {
	Name() string
	Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(nodes []dynamo.Node, stats dynamo.StepStats)
}

// PointerObserver is implemented by observers that also want capture and
// release notifications.
type PointerObserver interface {
	OnCapture(id dynamo.NodeID)
	OnRelease(id dynamo.NodeID, vel dynamo.Vec2)
}

// RunConfig bounds a headless run. RecordEvery > 0 keeps every n-th node
// set in the result trace; the initial set is always kept.
type RunConfig struct {
	Steps       int
	RecordEvery int
	Seed        int64
}

func (c RunConfig) validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", c.RecordEvery)
	}
	return nil
}

type Sample struct {
	Step  int
	Nodes []dynamo.Node
}

type Result struct {
	Seed      int64
	Steps     int
	Bounces   int
	Sanitized int
	Trace     []Sample
	Final     []dynamo.Node
	Metrics   map[string]float64
}
