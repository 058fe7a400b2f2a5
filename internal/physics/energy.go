package physics

import (
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
)

func KineticEnergy(nodes []dynamo.Node) float64 {
	ke := 0.0
	for _, n := range nodes {
		ke += n.KineticEnergy()
	}
	return ke
}

// PotentialEnergy sums -G·mi·mj/d over unordered pairs, using the same
// distance floor as the force law.
func (p Params) PotentialEnergy(nodes []dynamo.Node) float64 {
	pe := 0.0
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Max(nodes[j].Pos.Sub(nodes[i].Pos).Len(), p.MinDistance)
			pe -= p.G * nodes[i].Mass * nodes[j].Mass / d
		}
	}
	return pe
}

// Momentum returns the total linear momentum of the set.
func Momentum(nodes []dynamo.Node) dynamo.Vec2 {
	var m dynamo.Vec2
	for _, n := range nodes {
		m = m.Add(n.Vel.Scale(n.Mass))
	}
	return m
}

// Pull returns the display strength of the attraction between a and b,
// capped at limit.
func (p Params) Pull(a, b dynamo.Node, limit float64) float64 {
	d := math.Max(b.Pos.Sub(a.Pos).Len(), p.MinDistance)
	return math.Min(limit, p.G*a.Mass*b.Mass/(d*d))
}
