package physics

import (
	"log/slog"
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/logging"
)

// Gravity advances a node set by one frame: friction, pairwise attraction,
// integration, wall collision and sanitation, in that order.
type Gravity struct {
	Params
	logger *slog.Logger
}

func NewGravity(p Params, logger *slog.Logger) *Gravity {
	return &Gravity{Params: p, logger: logging.OrNop(logger)}
}

// Step computes the successor of prev within bounds. Every node reads the
// pre-step positions of all others. Frozen nodes are held in place (clamped
// into the walls) and exert force on the rest. prev is not modified.
func (g *Gravity) Step(prev []dynamo.Node, bounds dynamo.Bounds, frozen ...dynamo.NodeID) ([]dynamo.Node, dynamo.StepStats) {
	var stats dynamo.StepStats
	next := make([]dynamo.Node, len(prev))

	for i, node := range prev {
		if isFrozen(node.ID, frozen) {
			next[i] = g.hold(node, bounds, &stats)
			continue
		}

		vel := node.Vel.Scale(g.Friction).Add(g.acceleration(i, prev))
		pos := node.Pos.Add(vel)

		if !pos.IsValid() {
			pos = fallbackPos(pos, node.Pos, bounds)
			stats.Sanitized++
			g.logger.Debug("non-finite position replaced", "node", node.ID)
		}

		var bounced bool
		pos, vel, bounced = g.collide(node.Mass, pos, vel, bounds)
		if bounced {
			stats.Bounces++
		}

		if !vel.IsValid() {
			vel = sanitizeVel(vel)
			stats.Sanitized++
			g.logger.Debug("non-finite velocity zeroed", "node", node.ID)
		}

		node.Pos, node.Vel = pos, vel
		next[i] = node
	}

	return next, stats
}

// acceleration sums the pull of every other node on nodes[i].
func (g *Gravity) acceleration(i int, nodes []dynamo.Node) dynamo.Vec2 {
	var acc dynamo.Vec2
	self := nodes[i]

	for j, other := range nodes {
		if j == i {
			continue
		}
		dx := other.Pos.X - self.Pos.X
		dy := other.Pos.Y - self.Pos.Y
		dist := math.Max(math.Hypot(dx, dy), g.MinDistance)

		force := g.G * self.Mass * other.Mass / (dist * dist)
		sin, cos := math.Sincos(math.Atan2(dy, dx))
		acc.X += cos * force / self.Mass
		acc.Y += sin * force / self.Mass
	}

	return acc
}

func (g *Gravity) collide(mass float64, pos, vel dynamo.Vec2, bounds dynamo.Bounds) (dynamo.Vec2, dynamo.Vec2, bool) {
	w, h := bounds.Extent()
	r := g.BoundaryRadius(mass)

	var hitX, hitY bool
	pos.X, vel.X, hitX = g.resolveAxis(pos.X, vel.X, w, r)
	pos.Y, vel.Y, hitY = g.resolveAxis(pos.Y, vel.Y, h, r)
	return pos, vel, hitX || hitY
}

// resolveAxis clamps p into [Padding+r, extent-Padding-r] and reflects v
// inward on contact. When the interval is empty the node is parked at the
// axis midpoint with no motion along it.
func (g *Gravity) resolveAxis(p, v, extent, r float64) (float64, float64, bool) {
	if math.IsInf(extent, 1) {
		return p, v, false
	}

	lo := g.Padding + r
	hi := extent - g.Padding - r
	if lo > hi {
		return extent / 2, 0, false
	}

	switch {
	case p < lo:
		return lo, math.Abs(v) * g.Bounce, true
	case p > hi:
		return hi, -math.Abs(v) * g.Bounce, true
	}
	return p, v, false
}

func (g *Gravity) hold(node dynamo.Node, bounds dynamo.Bounds, stats *dynamo.StepStats) dynamo.Node {
	if !node.Pos.IsValid() {
		node.Pos = fallbackPos(node.Pos, dynamo.Vec2{X: math.NaN(), Y: math.NaN()}, bounds)
		stats.Sanitized++
	}

	node.Vel = dynamo.Vec2{}
	w, h := bounds.Extent()
	r := g.BoundaryRadius(node.Mass)
	node.Pos.X, _, _ = g.resolveAxis(node.Pos.X, 0, w, r)
	node.Pos.Y, _, _ = g.resolveAxis(node.Pos.Y, 0, h, r)
	return node
}

// fallbackPos replaces each non-finite component of pos with the matching
// component of prior, or of the viewport centre when prior is unusable too.
func fallbackPos(pos, prior dynamo.Vec2, bounds dynamo.Bounds) dynamo.Vec2 {
	c := bounds.Center()
	if !dynamo.IsFinite(pos.X) {
		pos.X = prior.X
		if !dynamo.IsFinite(pos.X) {
			pos.X = c.X
		}
	}
	if !dynamo.IsFinite(pos.Y) {
		pos.Y = prior.Y
		if !dynamo.IsFinite(pos.Y) {
			pos.Y = c.Y
		}
	}
	return pos
}

func sanitizeVel(v dynamo.Vec2) dynamo.Vec2 {
	if !dynamo.IsFinite(v.X) {
		v.X = 0
	}
	if !dynamo.IsFinite(v.Y) {
		v.Y = 0
	}
	return v
}

func isFrozen(id dynamo.NodeID, frozen []dynamo.NodeID) bool {
	for _, f := range frozen {
		if f == id {
			return true
		}
	}
	return false
}
