package physics

import (
	"math"
	"testing"

	"github.com/san-kum/orbits/internal/dynamo"
)

func ring(n int) []dynamo.Node {
	nodes := make([]dynamo.Node, n)
	for i := range nodes {
		angle := float64(i) * 2 * math.Pi / float64(n)
		nodes[i] = dynamo.Node{
			ID:   dynamo.NodeID(i + 1),
			Pos:  dynamo.Vec2{X: 450 + 200*math.Cos(angle), Y: 300 + 200*math.Sin(angle)},
			Mass: 1,
		}
	}
	return nodes
}

func BenchmarkStep5(b *testing.B) {
	g := NewGravity(DefaultParams(), nil)
	nodes := ring(5)
	bounds := dynamo.Bounds{Width: 900, Height: 600}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nodes, _ = g.Step(nodes, bounds)
	}
}

func BenchmarkStep100(b *testing.B) {
	g := NewGravity(DefaultParams(), nil)
	nodes := ring(100)
	bounds := dynamo.Unbounded()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nodes, _ = g.Step(nodes, bounds)
	}
}
