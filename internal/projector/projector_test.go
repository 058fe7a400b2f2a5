package projector

import (
	"math"
	"testing"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

func TestStyleSizes(t *testing.T) {
	s := DefaultStyle()

	tests := []struct {
		mass        float64
		radius      float64
		fieldRadius float64
	}{
		{1, 22, 80},
		{2, 34, 80},
		{4, 58, 120},
	}

	for _, tt := range tests {
		if got := s.Radius(tt.mass); got != tt.radius {
			t.Errorf("Radius(%v) = %v, want %v", tt.mass, got, tt.radius)
		}
		if got := s.FieldRadius(tt.mass); got != tt.fieldRadius {
			t.Errorf("FieldRadius(%v) = %v, want %v", tt.mass, got, tt.fieldRadius)
		}
	}
}

func TestProject(t *testing.T) {
	p := New(DefaultStyle(), physics.DefaultParams())
	nodes := []dynamo.Node{
		{ID: 1, Pos: dynamo.Vec2{X: 100, Y: 100}, Vel: dynamo.Vec2{X: 3, Y: 4}, Mass: 1, Color: "#C5DAC4", Label: "A"},
		{ID: 2, Pos: dynamo.Vec2{X: 110, Y: 100}, Mass: 2, Label: "B"},
		{ID: 3, Pos: dynamo.Vec2{X: 100, Y: 100}, Mass: 40, Label: "C"},
		{ID: 4, Pos: dynamo.Vec2{X: 100, Y: 100}, Mass: 1000, Label: "D"},
	}

	f := p.Project(nodes, dynamo.Bounds{Width: 900, Height: 600}, 2)

	if len(f.Nodes) != 4 || len(f.Edges) != 6 {
		t.Fatalf("expected 4 nodes and 6 edges, got %d and %d", len(f.Nodes), len(f.Edges))
	}

	a, _ := f.Node(1)
	if a.Speed != 5 || a.Color != "#C5DAC4" || a.Captured {
		t.Errorf("unexpected view %+v", a)
	}
	if b, _ := f.Node(2); !b.Captured {
		t.Error("captured flag missing")
	}

	wantPairs := [][2]dynamo.NodeID{{1, 2}, {1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 4}}
	for i, e := range f.Edges {
		if e.From != wantPairs[i][0] || e.To != wantPairs[i][1] {
			t.Errorf("edge %d = %d-%d, want %v", i, e.From, e.To, wantPairs[i])
		}
	}

	// d=10: 0.5*1*2/100 = 0.01
	if e := f.Edges[0]; math.Abs(e.Pull-0.01) > 1e-12 || math.Abs(e.Thickness-10) > 1e-9 {
		t.Errorf("edge 1-2 = %+v", e)
	}
	// Coincident pair uses the distance floor: 0.5*1*40/25 = 0.8, under the cap.
	if e := f.Edges[1]; math.Abs(e.Pull-0.8) > 1e-12 || math.Abs(e.Thickness-math.Sqrt(0.8)*100) > 1e-9 {
		t.Errorf("edge 1-3 = %+v, want pull 0.8", e)
	}
	// 0.5*1*1000/25 = 20 is clamped to the cap.
	if e := f.Edges[2]; e.Pull != 8 || math.Abs(e.Thickness-math.Sqrt(8)*100) > 1e-9 {
		t.Errorf("edge 1-4 = %+v, want cap 8", e)
	}
}

func TestProjectSingleNode(t *testing.T) {
	p := New(DefaultStyle(), physics.DefaultParams())
	f := p.Project([]dynamo.Node{{ID: 1, Mass: 1}}, dynamo.Bounds{})

	if len(f.Edges) != 0 {
		t.Errorf("single node produced %d edges", len(f.Edges))
	}
}
