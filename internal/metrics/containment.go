package metrics

import (
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

// Containment is the fraction of steps after which every node sat inside
// its padded walls. Anything below 1 points at a stepper bug.
type Containment struct {
	name       string
	params     physics.Params
	violations int
	samples    int
}

func NewContainment(params physics.Params) *Containment {
	return &Containment{
		name:   "containment",
		params: params,
	}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats) {
	c.samples++
	w, h := bounds.Extent()
	for _, n := range nodes {
		r := c.params.BoundaryRadius(n.Mass)
		if !inside(n.Pos.X, w, c.params.Padding+r) || !inside(n.Pos.Y, h, c.params.Padding+r) {
			c.violations++
			return
		}
	}
}

func inside(p, extent, inset float64) bool {
	if math.IsInf(extent, 1) {
		return dynamo.IsFinite(p)
	}
	lo, hi := inset, extent-inset
	if lo > hi {
		return p == extent/2
	}
	const eps = 1e-9
	return p >= lo-eps && p <= hi+eps
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
