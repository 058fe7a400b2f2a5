// Package export renders frames and recorded traces as standalone SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/sim"
)

const (
	EdgeColor    = "#fff67e"
	GlowColor    = "#fff67e60"
	Background   = "#0a0a0a"
	haloGradient = "gravityGradient"
)

type SVGOptions struct {
	Background string
	// Trails are drawn under the nodes, one polyline per node.
	Trails map[dynamo.NodeID][]dynamo.Vec2
	// Labels draws node labels inside the discs.
	Labels bool
}

// FrameToSVG draws a projected frame in viewport pixel coordinates: halos,
// then pull lines, then trails, then node discs.
func FrameToSVG(f projector.Frame, opts SVGOptions) string {
	w, h := f.Bounds.Extent()
	if math.IsInf(w, 0) || math.IsInf(h, 0) {
		w, h = dynamo.DefaultWidth, dynamo.DefaultHeight
	}
	bg := opts.Background
	if bg == "" {
		bg = Background
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
<radialGradient id="%s" cx="50%%" cy="50%%" r="50%%">
<stop offset="0%%" stop-color="rgb(100,200,255)" stop-opacity="0.1"/>
<stop offset="100%%" stop-color="rgb(100,200,255)" stop-opacity="0"/>
</radialGradient>
</defs>
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, haloGradient, bg)

	for _, n := range f.Nodes {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="url(#%s)"/>
`, n.X, n.Y, n.FieldRadius, haloGradient)
	}

	pos := make(map[dynamo.NodeID]projector.NodeView, len(f.Nodes))
	for _, n := range f.Nodes {
		pos[n.ID] = n
	}
	for _, e := range f.Edges {
		a, b := pos[e.From], pos[e.To]
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.2f" stroke-linecap="round"/>
`, a.X, a.Y, b.X, b.Y, EdgeColor, e.Thickness)
	}

	for _, n := range f.Nodes {
		trail := opts.Trails[n.ID]
		if len(trail) < 2 {
			continue
		}
		sb.WriteString(`<path fill="none" stroke-width="1.5" stroke-opacity="0.6" stroke="`)
		sb.WriteString(n.Color)
		sb.WriteString(`" d="`)
		writePath(&sb, trail)
		sb.WriteString("\"/>\n")
	}

	for _, n := range f.Nodes {
		if n.Captured {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, n.X, n.Y, n.Radius+20, GlowColor)
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.9"/>
`, n.X, n.Y, n.Radius, n.Color)
		if opts.Labels && n.Label != "" {
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#ffffff" font-family="sans-serif" font-weight="bold" font-size="%.0f" text-anchor="middle" dominant-baseline="central">%s</text>
`, n.X, n.Y, math.Max(10, n.Radius*0.8), escape(n.Label))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePath(sb *strings.Builder, pts []dynamo.Vec2) {
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", p.X, p.Y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", p.X, p.Y)
		}
	}
}

// TrailsFromTrace collects each node's recorded positions in sample order.
func TrailsFromTrace(trace []sim.Sample) map[dynamo.NodeID][]dynamo.Vec2 {
	trails := make(map[dynamo.NodeID][]dynamo.Vec2)
	for _, s := range trace {
		for _, n := range s.Nodes {
			trails[n.ID] = append(trails[n.ID], n.Pos)
		}
	}
	return trails
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
