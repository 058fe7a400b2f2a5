package analysis

import (
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent, per step, by
// trajectory separation. The first node is nudged by perturbation along x;
// both node sets are stepped together and the separation is renormalised
// whenever it exceeds one pixel. A positive value indicates chaos.
func LyapunovExponent(
	stepper sim.Stepper,
	nodes []dynamo.Node,
	bounds dynamo.Bounds,
	steps int,
	perturbation float64,
) float64 {
	if len(nodes) == 0 || steps <= 0 || perturbation <= 0 {
		return 0
	}

	x := dynamo.CloneNodes(nodes)
	xp := dynamo.CloneNodes(nodes)
	xp[0].Pos.X += perturbation
	d0 := perturbation

	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x, _ = stepper.Step(x, bounds)
		xp, _ = stepper.Step(xp, bounds)

		sep := separation(x, xp)
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}

		// Renormalize to prevent saturation at the walls.
		if sep > 1.0 {
			scale := d0 / sep
			for j := range xp {
				xp[j].Pos = x[j].Pos.Add(xp[j].Pos.Sub(x[j].Pos).Scale(scale))
				xp[j].Vel = x[j].Vel.Add(xp[j].Vel.Sub(x[j].Vel).Scale(scale))
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}

// separation is the Euclidean distance between two node sets in
// position-velocity space.
func separation(a, b []dynamo.Node) float64 {
	var sum float64
	for i := range a {
		dp := b[i].Pos.Sub(a[i].Pos)
		dv := b[i].Vel.Sub(a[i].Vel)
		sum += dp.X*dp.X + dp.Y*dp.Y + dv.X*dv.X + dv.Y*dv.Y
	}
	return math.Sqrt(sum)
}
