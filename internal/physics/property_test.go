package physics

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/san-kum/orbits/internal/dynamo"
)

func triple(m1, m2, m3, x, y, v float64) []dynamo.Node {
	return []dynamo.Node{
		{ID: 1, Pos: dynamo.Vec2{X: x, Y: y}, Vel: dynamo.Vec2{X: v, Y: -v}, Mass: m1, Label: "A"},
		{ID: 2, Pos: dynamo.Vec2{X: y, Y: x}, Vel: dynamo.Vec2{X: -v}, Mass: m2, Label: "B"},
		{ID: 3, Pos: dynamo.Vec2{X: x + 40, Y: y - 40}, Vel: dynamo.Vec2{Y: v}, Mass: m3, Label: "C"},
	}
}

// TestStepInvariants checks containment, finiteness and identity
// preservation across random viewports and node sets.
func TestStepInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	p := DefaultParams()
	g := NewGravity(p, nil)

	mass := gen.Float64Range(0.5, 3)
	extent := gen.Float64Range(400, 2000)
	coord := gen.Float64Range(-1000, 3000)
	speed := gen.Float64Range(-50, 50)

	properties.Property("nodes end inside the padded walls", prop.ForAll(
		func(w, h, m1, m2, m3, x, y, v float64) bool {
			next, _ := g.Step(triple(m1, m2, m3, x, y, v), dynamo.Bounds{Width: w, Height: h})
			for _, n := range next {
				r := p.BoundaryRadius(n.Mass)
				if n.Pos.X < p.Padding+r || n.Pos.X > w-p.Padding-r {
					return false
				}
				if n.Pos.Y < p.Padding+r || n.Pos.Y > h-p.Padding-r {
					return false
				}
			}
			return true
		},
		extent, extent, mass, mass, mass, coord, coord, speed,
	))

	properties.Property("state stays finite over many steps", prop.ForAll(
		func(w, h, m1, m2, m3, x, y, v float64) bool {
			nodes := triple(m1, m2, m3, x, y, v)
			bounds := dynamo.Bounds{Width: w, Height: h}
			for i := 0; i < 50; i++ {
				nodes, _ = g.Step(nodes, bounds)
			}
			for _, n := range nodes {
				if !n.IsValid() {
					return false
				}
			}
			return true
		},
		extent, extent, mass, mass, mass, coord, coord, speed,
	))

	properties.Property("identity and mass are preserved", prop.ForAll(
		func(m1, m2, m3, x, y, v float64) bool {
			prev := triple(m1, m2, m3, x, y, v)
			next, _ := g.Step(prev, dynamo.Bounds{Width: 1200, Height: 800})
			if len(next) != len(prev) {
				return false
			}
			for i := range prev {
				if next[i].ID != prev[i].ID || next[i].Mass != prev[i].Mass || next[i].Label != prev[i].Label {
					return false
				}
			}
			return true
		},
		mass, mass, mass, coord, coord, speed,
	))

	properties.Property("result does not depend on node order", prop.ForAll(
		func(m1, m2, m3, x, y, v float64) bool {
			bounds := dynamo.Bounds{Width: 1200, Height: 800}
			fwd := triple(m1, m2, m3, x, y, v)
			rev := []dynamo.Node{fwd[2], fwd[1], fwd[0]}

			a, _ := g.Step(fwd, bounds)
			b, _ := g.Step(rev, bounds)
			for i := range a {
				j := dynamo.IndexOf(b, a[i].ID)
				if !near(a[i].Pos.X, b[j].Pos.X, 1e-9) || !near(a[i].Pos.Y, b[j].Pos.Y, 1e-9) {
					return false
				}
			}
			return true
		},
		mass, mass, mass, coord, coord, speed,
	))

	properties.TestingRun(t)
}
