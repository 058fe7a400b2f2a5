package metrics

import (
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

// Energy reports the mean total kinetic energy over observed steps.
type Energy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats) {
	e.last = physics.KineticEnergy(nodes)
	e.total += e.last
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last returns the kinetic energy of the most recent step.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// PeakSpeed reports the highest node speed seen.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats) {
	for _, n := range nodes {
		p.peak = math.Max(p.peak, n.Speed())
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
