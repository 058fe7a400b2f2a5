package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

// Exporter publishes session activity as Prometheus metrics. Register it
// with sim.Session.AddObserver.
type Exporter struct {
	registry *prometheus.Registry

	StepsTotal     prometheus.Counter
	BouncesTotal   prometheus.Counter
	SanitizedTotal prometheus.Counter
	CapturesTotal  prometheus.Counter
	KineticEnergy  prometheus.Gauge
	NodeSpeed      *prometheus.GaugeVec
	FlingSpeed     prometheus.Histogram
}

func NewExporter() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}
	factory := promauto.With(e.registry)

	e.StepsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "orbits_steps_total",
		Help: "Simulation steps taken",
	})
	e.BouncesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "orbits_bounces_total",
		Help: "Wall contacts resolved by the stepper",
	})
	e.SanitizedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "orbits_sanitized_total",
		Help: "Non-finite positions or velocities replaced",
	})
	e.CapturesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "orbits_captures_total",
		Help: "Nodes grabbed by the pointer",
	})
	e.KineticEnergy = factory.NewGauge(prometheus.GaugeOpts{
		Name: "orbits_kinetic_energy",
		Help: "Total kinetic energy after the last step",
	})
	e.NodeSpeed = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orbits_node_speed",
		Help: "Speed of each node after the last step, px/frame",
	}, []string{"label"})
	e.FlingSpeed = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "orbits_fling_speed",
		Help:    "Release speed imparted on pointer up, px/frame",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	return e
}

// Registry returns the registry the exporter's collectors live in.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) OnStep(nodes []dynamo.Node, stats dynamo.StepStats) {
	e.StepsTotal.Inc()
	e.BouncesTotal.Add(float64(stats.Bounces))
	e.SanitizedTotal.Add(float64(stats.Sanitized))
	e.KineticEnergy.Set(physics.KineticEnergy(nodes))
	for _, n := range nodes {
		e.NodeSpeed.WithLabelValues(n.Label).Set(n.Speed())
	}
}

func (e *Exporter) OnCapture(id dynamo.NodeID) {
	e.CapturesTotal.Inc()
}

func (e *Exporter) OnRelease(id dynamo.NodeID, vel dynamo.Vec2) {
	e.FlingSpeed.Observe(vel.Len())
}
