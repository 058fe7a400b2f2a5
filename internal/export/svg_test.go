package export

import (
	"strings"
	"testing"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/physics"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/sim"
)

func testFrame() projector.Frame {
	p := projector.New(projector.DefaultStyle(), physics.DefaultParams())
	return p.Project([]dynamo.Node{
		{ID: 1, Pos: dynamo.Vec2{X: 200, Y: 200}, Mass: 1, Color: "#C5DAC4", Label: "A"},
		{ID: 2, Pos: dynamo.Vec2{X: 400, Y: 250}, Mass: 2, Color: "#FF326C", Label: "<B>"},
	}, dynamo.Bounds{Width: 800, Height: 500}, 2)
}

func TestFrameToSVG(t *testing.T) {
	svg := FrameToSVG(testFrame(), SVGOptions{Labels: true})

	for _, want := range []string{
		`width="800" height="500"`,
		`fill="#C5DAC4"`,
		`stroke="` + EdgeColor + `"`,
		`fill="` + GlowColor + `"`,
		"&lt;B&gt;",
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := strings.Count(svg, "<line "); got != 1 {
		t.Errorf("expected 1 edge, got %d", got)
	}
}

func TestFrameToSVGTrails(t *testing.T) {
	trace := []sim.Sample{
		{Step: 0, Nodes: []dynamo.Node{{ID: 1, Pos: dynamo.Vec2{X: 1, Y: 2}}, {ID: 2}}},
		{Step: 5, Nodes: []dynamo.Node{{ID: 1, Pos: dynamo.Vec2{X: 3, Y: 4}}, {ID: 2}}},
	}
	trails := TrailsFromTrace(trace)
	if len(trails[1]) != 2 || trails[1][1] != (dynamo.Vec2{X: 3, Y: 4}) {
		t.Fatalf("unexpected trails %v", trails)
	}

	svg := FrameToSVG(testFrame(), SVGOptions{Trails: trails})
	if !strings.Contains(svg, "M1.0,2.0 L3.0,4.0") {
		t.Error("trail path missing")
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels drawn without Labels option")
	}
}

func TestFrameToSVGUnbounded(t *testing.T) {
	f := testFrame()
	f.Bounds = dynamo.Unbounded()
	if svg := FrameToSVG(f, SVGOptions{}); !strings.Contains(svg, `width="900" height="600"`) {
		t.Error("unbounded frame should fall back to the default viewport")
	}
}
