package interaction

import (
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/logging"
	"github.com/san-kum/orbits/internal/store"
)

// Options tune pointer handling.
type Options struct {
	// Padding insets the region the pointer is clamped to.
	Padding float64
	// Fling converts release speed in px/s into px/frame before the mass
	// division.
	Fling float64
}

func DefaultOptions() Options {
	return Options{Padding: 60, Fling: 0.02}
}

// Controller turns pointer events into node-set edits. At most one node is
// captured at a time. Like the store it edits, it is not safe for
// concurrent use.
type Controller struct {
	store  *store.Store
	opts   Options
	state  State
	logger *slog.Logger
}

func New(st *store.Store, opts Options, logger *slog.Logger) *Controller {
	return &Controller{
		store:  st,
		opts:   opts,
		state:  Free{},
		logger: logging.OrNop(logger),
	}
}

func (c *Controller) State() State { return c.state }

// CapturedID returns the held node, if any.
func (c *Controller) CapturedID() (dynamo.NodeID, bool) {
	if held, ok := c.state.(Captured); ok {
		return held.ID, true
	}
	return 0, false
}

// PointerDown captures node id. It is ignored when another capture is in
// progress or id is unknown. The node's velocity is zeroed immediately.
func (c *Controller) PointerDown(id dynamo.NodeID, p dynamo.Vec2, t time.Time) bool {
	if _, busy := c.state.(Captured); busy {
		return false
	}
	node, ok := c.store.Node(id)
	if !ok || !p.IsValid() {
		return false
	}

	c.state = Captured{ID: id, Offset: node.Pos.Sub(p)}
	c.update(id, node.Pos, dynamo.Vec2{})
	c.logger.Debug("node captured", "node", id, "at", p)
	return true
}

// PointerMove drags the captured node so the grab point follows the
// clamped pointer. The node has no velocity while held.
func (c *Controller) PointerMove(p dynamo.Vec2, t time.Time) {
	held, ok := c.state.(Captured)
	if !ok || !p.IsValid() {
		return
	}

	pos := c.clamp(p).Add(held.Offset)
	c.update(held.ID, pos, dynamo.Vec2{})

	held.LastPos, held.LastTime, held.HasSample = pos, t, true
	c.state = held
}

// PointerUp releases the captured node and returns the velocity it was
// flung with. The release velocity is the displacement since the last drag
// sample over the elapsed time, scaled by Fling and divided by mass. A
// release without a usable sample leaves the node at rest.
func (c *Controller) PointerUp(p dynamo.Vec2, t time.Time) dynamo.Vec2 {
	held, ok := c.state.(Captured)
	if !ok {
		return dynamo.Vec2{}
	}
	c.state = Free{}

	node, ok := c.store.Node(held.ID)
	if !ok {
		return dynamo.Vec2{}
	}

	var vel dynamo.Vec2
	if held.HasSample && p.IsValid() {
		dt := t.Sub(held.LastTime).Seconds()
		if dt > 0 {
			final := c.clamp(p).Add(held.Offset)
			vel = final.Sub(held.LastPos).Scale(c.opts.Fling / (dt * node.Mass))
		}
	}
	if !vel.IsValid() {
		vel = dynamo.Vec2{}
	}

	c.update(held.ID, node.Pos, vel)
	c.logger.Debug("node released", "node", held.ID, "vel", vel)
	return vel
}

// Cancel drops any capture without imparting velocity.
func (c *Controller) Cancel() {
	if held, ok := c.state.(Captured); ok {
		c.logger.Debug("capture cancelled", "node", held.ID)
	}
	c.state = Free{}
}

// HitTest returns the topmost node whose disc of radius(mass) contains p.
// Later nodes are drawn over earlier ones.
func (c *Controller) HitTest(p dynamo.Vec2, radius func(mass float64) float64) (dynamo.NodeID, bool) {
	nodes := c.store.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Pos.Sub(p).Len() <= radius(n.Mass) {
			return n.ID, true
		}
	}
	return 0, false
}

func (c *Controller) clamp(p dynamo.Vec2) dynamo.Vec2 {
	w, h := c.store.Bounds().Extent()
	return dynamo.Vec2{
		X: clampAxis(p.X, c.opts.Padding, w-c.opts.Padding),
		Y: clampAxis(p.Y, c.opts.Padding, h-c.opts.Padding),
	}
}

func clampAxis(v, lo, hi float64) float64 {
	if math.IsInf(hi, 1) {
		return v
	}
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(v, hi))
}

func (c *Controller) update(id dynamo.NodeID, pos, vel dynamo.Vec2) {
	nodes := c.store.Nodes()
	i := dynamo.IndexOf(nodes, id)
	if i < 0 {
		return
	}
	nodes[i].Pos, nodes[i].Vel = pos, vel
	c.commit(nodes)
}

// commit writes an edited node set back to the store. A rejected set leaves
// the store unchanged and is logged.
func (c *Controller) commit(nodes []dynamo.Node) bool {
	if err := c.store.Replace(nodes); err != nil {
		c.logger.Error("pointer edit rejected", "error", err)
		return false
	}
	return true
}
