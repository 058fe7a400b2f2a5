// Package scene builds initial node sets.
package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orbits/internal/dynamo"
)

// Phi is the golden ratio, truncated the way the layouts were tuned.
const Phi = 1.618

// Palette is the default node colouring, in node order.
var Palette = []string{"#C5DAC4", "#FF326C", "#B1B824", "#FFE799", "#FF4747"}

const seedPadding = 80

// Golden places n nodes on a golden-ratio quasi-random sequence inside
// bounds. Node i has mass Phi^i, a letter label and a small random drift.
// Placement is biased toward the top of the viewport and away from the
// centre. The same rng seed always gives the same layout.
func Golden(n int, bounds dynamo.Bounds, rng *rand.Rand) []dynamo.Node {
	w, h := bounds.Extent()
	nodes := make([]dynamo.Node, n)

	for i := range nodes {
		t := (float64(i) + rng.Float64()) / float64(n)
		xn := math.Mod(t*Phi, 1)
		yn := math.Mod(t*Phi*Phi, 1)

		yn = math.Pow(yn, 1.5)

		xn = 0.5 + (xn-0.5)*1.3
		yn = 0.5 + (yn-0.5)*1.3

		xn = math.Min(math.Max(xn, 0), 1)
		yn = math.Min(math.Max(yn, 0), 1)

		nodes[i] = dynamo.Node{
			ID:    dynamo.NodeID(i + 1),
			Pos:   dynamo.Vec2{X: seedPadding + xn*(w-2*seedPadding), Y: seedPadding + yn*(h-2*seedPadding)},
			Vel:   dynamo.Vec2{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5},
			Mass:  math.Pow(Phi, float64(i)),
			Color: Color(i),
			Label: Label(i),
		}
	}

	return nodes
}

// About is the fixed five-node layout with two heavy anchors.
func About() []dynamo.Node {
	return []dynamo.Node{
		{ID: 1, Pos: dynamo.Vec2{X: 200, Y: 200}, Mass: 1, Color: "#C5DAC4", Label: "A"},
		{ID: 2, Pos: dynamo.Vec2{X: 500, Y: 300}, Mass: 1, Color: "#B1B824", Label: "B"},
		{ID: 3, Pos: dynamo.Vec2{X: 350, Y: 450}, Mass: 2, Color: "#FFE799", Label: "C"},
		{ID: 4, Pos: dynamo.Vec2{X: 400, Y: 600}, Vel: dynamo.Vec2{X: 1}, Mass: 40, Color: "#2D485E", Label: "D"},
		{ID: 5, Pos: dynamo.Vec2{X: 1000, Y: 0}, Vel: dynamo.Vec2{X: 2}, Mass: 100, Color: "#FF326C", Label: "E"},
	}
}

// Binary is a resting 1:4 pair centred in bounds, 50px apart.
func Binary(bounds dynamo.Bounds) []dynamo.Node {
	c := bounds.Center()
	return []dynamo.Node{
		{ID: 1, Pos: dynamo.Vec2{X: c.X - 25, Y: c.Y}, Mass: 1, Color: Palette[0], Label: "A"},
		{ID: 2, Pos: dynamo.Vec2{X: c.X + 25, Y: c.Y}, Mass: 4, Color: Palette[1], Label: "B"},
	}
}

// Label names node i: A..Z, then A1, B1, ...
func Label(i int) string {
	l := string(rune('A' + i%26))
	if i >= 26 {
		l += fmt.Sprint(i / 26)
	}
	return l
}

// Color returns the palette entry for node i, falling back to evenly
// spaced hues once the palette runs out.
func Color(i int) string {
	if i < len(Palette) {
		return Palette[i]
	}
	hue := math.Mod(float64(i)*360/Phi, 360)
	return colorful.Hcl(hue, 0.6, 0.75).Clamped().Hex()
}
