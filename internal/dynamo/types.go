package dynamo

import (
	"fmt"
	"math"
)

// Default viewport used until the host reports a real size.
const (
	DefaultWidth  = 900.0
	DefaultHeight = 600.0
)

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) IsValid() bool { return isFinite(v.X) && isFinite(v.Y) }

func (v Vec2) String() string { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

// NodeID identifies a node for the lifetime of a session. IDs are never reused.
type NodeID int

// Node is one simulated body. Mass, Color and Label are fixed at creation;
// Pos and Vel change every frame.
type Node struct {
	ID    NodeID
	Pos   Vec2
	Vel   Vec2
	Mass  float64
	Color string
	Label string
}

func (n Node) Speed() float64 { return n.Vel.Len() }

// KineticEnergy returns ½·m·|v|².
func (n Node) KineticEnergy() float64 {
	return 0.5 * n.Mass * (n.Vel.X*n.Vel.X + n.Vel.Y*n.Vel.Y)
}

func (n Node) IsValid() bool { return n.Pos.IsValid() && n.Vel.IsValid() }

// CloneNodes returns an independent copy of a node set.
func CloneNodes(nodes []Node) []Node {
	c := make([]Node, len(nodes))
	copy(c, nodes)
	return c
}

// IndexOf returns the position of id in nodes, or -1.
func IndexOf(nodes []Node, id NodeID) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Bounds is the viewport size in pixels. A zero dimension means "not measured
// yet" and resolves to the defaults; an infinite dimension disables collision
// on that axis.
type Bounds struct {
	Width  float64
	Height float64
}

// Unbounded returns bounds with no walls.
func Unbounded() Bounds {
	return Bounds{Width: math.Inf(1), Height: math.Inf(1)}
}

// Extent returns the effective width and height.
func (b Bounds) Extent() (float64, float64) {
	w, h := b.Width, b.Height
	if w == 0 || math.IsNaN(w) {
		w = DefaultWidth
	}
	if h == 0 || math.IsNaN(h) {
		h = DefaultHeight
	}
	return w, h
}

func (b Bounds) Center() Vec2 {
	w, h := b.Extent()
	c := Vec2{w / 2, h / 2}
	if math.IsInf(w, 0) {
		c.X = 0
	}
	if math.IsInf(h, 0) {
		c.Y = 0
	}
	return c
}

func (b Bounds) IsUnbounded() bool {
	return math.IsInf(b.Width, 1) && math.IsInf(b.Height, 1)
}

// StepStats summarises what happened during one simulation step.
type StepStats struct {
	Step      int
	Bounces   int
	Sanitized int
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool { return isFinite(v) }
