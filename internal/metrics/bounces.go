package metrics

import "github.com/san-kum/orbits/internal/dynamo"

// Bounces counts wall contacts across all observed steps.
type Bounces struct {
	name  string
	count int
}

func NewBounces() *Bounces {
	return &Bounces{name: "bounces"}
}

func (b *Bounces) Name() string { return b.name }

func (b *Bounces) Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats) {
	b.count += stats.Bounces
}

func (b *Bounces) Value() float64 { return float64(b.count) }

func (b *Bounces) Reset() { b.count = 0 }

// Sanitized counts non-finite values the stepper had to replace.
type Sanitized struct {
	name  string
	count int
}

func NewSanitized() *Sanitized {
	return &Sanitized{name: "sanitized"}
}

func (s *Sanitized) Name() string { return s.name }

func (s *Sanitized) Observe(nodes []dynamo.Node, bounds dynamo.Bounds, stats dynamo.StepStats) {
	s.count += stats.Sanitized
}

func (s *Sanitized) Value() float64 { return float64(s.count) }

func (s *Sanitized) Reset() { s.count = 0 }
