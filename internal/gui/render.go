package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	colEdge     = rl.NewColor(0xff, 0xf6, 0x7e, 0xff)
	colGlow     = rl.NewColor(0xff, 0xf6, 0x7e, 0x60)
	colHaloIn   = rl.NewColor(100, 200, 255, 25)
	colHaloOut  = rl.NewColor(100, 200, 255, 0)
	colHeldRing = rl.NewColor(255, 255, 255, 200)
)

// hexColor converts a #rrggbb string to a raylib color. Unparseable input
// yields white.
func hexColor(hex string, alpha uint8) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.NewColor(255, 255, 255, alpha)
	}
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, alpha)
}

// drawScene paints halos, edges, glow and discs, back to front.
func (a *App) drawScene() {
	f := a.Frame

	if a.ShowFields {
		for _, n := range f.Nodes {
			rl.DrawCircleGradient(int32(n.X), int32(n.Y), float32(n.FieldRadius), colHaloIn, colHaloOut)
		}
	}

	for _, e := range f.Edges {
		from, okA := f.Node(e.From)
		to, okB := f.Node(e.To)
		if !okA || !okB || e.Thickness <= 0 {
			continue
		}
		thick := float32(math.Max(e.Thickness, 0.5))
		rl.DrawLineEx(rl.NewVector2(float32(from.X), float32(from.Y)), rl.NewVector2(float32(to.X), float32(to.Y)), thick, colEdge)
	}

	for _, n := range f.Nodes {
		center := rl.NewVector2(float32(n.X), float32(n.Y))
		if n.Captured {
			rl.DrawCircleV(center, float32(n.Radius)+12, colGlow)
			rl.DrawCircleLines(int32(n.X), int32(n.Y), float32(n.Radius)+4, colHeldRing)
		}
		rl.DrawCircleV(center, float32(n.Radius), hexColor(n.Color, 255))
		if a.ShowLabels && n.Label != "" {
			a.drawText(n.Label, int(n.X)-4, int(n.Y)-7, 14, ColBg)
		}
	}
}
