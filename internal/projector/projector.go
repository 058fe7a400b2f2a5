// Package projector turns a node set into a drawable frame: disc and halo
// sizes per node and a weighted line for every pair.
//
// Everything here is visual. Nothing feeds back into the simulation.
package projector

import (
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
)

// Style sets the mapping from physical to visual quantities.
type Style struct {
	BaseRadius     float64
	RadiusPerMass  float64
	MinFieldRadius float64
	FieldPerMass   float64
	PullCap        float64
	ThicknessScale float64
}

func DefaultStyle() Style {
	return Style{
		BaseRadius:     10,
		RadiusPerMass:  12,
		MinFieldRadius: 80,
		FieldPerMass:   30,
		PullCap:        8,
		ThicknessScale: 100,
	}
}

// Radius returns the drawn disc radius for a mass.
func (s Style) Radius(mass float64) float64 {
	return s.BaseRadius + mass*s.RadiusPerMass
}

// FieldRadius returns the halo radius for a mass.
func (s Style) FieldRadius(mass float64) float64 {
	return math.Max(s.MinFieldRadius, mass*s.FieldPerMass)
}

type NodeView struct {
	ID          dynamo.NodeID
	X, Y        float64
	Radius      float64
	FieldRadius float64
	Color       string
	Label       string
	Mass        float64
	Speed       float64
	Captured    bool
}

// Edge connects two nodes with a line whose thickness tracks their pull.
type Edge struct {
	From, To  dynamo.NodeID
	Pull      float64
	Thickness float64
}

type Frame struct {
	Nodes  []NodeView
	Edges  []Edge
	Bounds dynamo.Bounds
}

// Node returns the view of id.
func (f Frame) Node(id dynamo.NodeID) (NodeView, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

type Projector struct {
	Style  Style
	Params physics.Params
}

func New(style Style, params physics.Params) *Projector {
	return &Projector{Style: style, Params: params}
}

// Project builds a frame from nodes. Edges cover every unordered pair once,
// in store order.
func (p *Projector) Project(nodes []dynamo.Node, bounds dynamo.Bounds, captured ...dynamo.NodeID) Frame {
	f := Frame{
		Nodes:  make([]NodeView, len(nodes)),
		Edges:  make([]Edge, 0, len(nodes)*(len(nodes)-1)/2),
		Bounds: bounds,
	}

	for i, n := range nodes {
		f.Nodes[i] = NodeView{
			ID:          n.ID,
			X:           n.Pos.X,
			Y:           n.Pos.Y,
			Radius:      p.Style.Radius(n.Mass),
			FieldRadius: p.Style.FieldRadius(n.Mass),
			Color:       n.Color,
			Label:       n.Label,
			Mass:        n.Mass,
			Speed:       n.Speed(),
			Captured:    contains(captured, n.ID),
		}
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			pull := p.Params.Pull(nodes[i], nodes[j], p.Style.PullCap)
			f.Edges = append(f.Edges, Edge{
				From:      nodes[i].ID,
				To:        nodes[j].ID,
				Pull:      pull,
				Thickness: math.Sqrt(pull) * p.Style.ThicknessScale,
			})
		}
	}

	return f
}

func contains(ids []dynamo.NodeID, id dynamo.NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
