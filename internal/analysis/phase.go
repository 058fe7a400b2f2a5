package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D is one node's position along an axis plotted against its
// velocity along the same axis.
type PhasePortrait2D struct {
	Node   dynamo.NodeID
	Axis   string
	Points []Point
}

// GeneratePhasePortrait extracts the (position, velocity) pairs of node id
// along axis "x" or "y" from a recorded trace.
func GeneratePhasePortrait(trace []sim.Sample, id dynamo.NodeID, axis string) (*PhasePortrait2D, error) {
	if axis != "x" && axis != "y" {
		return nil, fmt.Errorf("axis must be x or y, got %q", axis)
	}

	portrait := &PhasePortrait2D{Node: id, Axis: axis, Points: make([]Point, 0, len(trace))}
	for _, s := range trace {
		i := dynamo.IndexOf(s.Nodes, id)
		if i < 0 {
			continue
		}
		n := s.Nodes[i]
		if axis == "x" {
			portrait.Points = append(portrait.Points, Point{n.Pos.X, n.Vel.X})
		} else {
			portrait.Points = append(portrait.Points, Point{n.Pos.Y, n.Vel.Y})
		}
	}
	if len(portrait.Points) == 0 {
		return nil, &dynamo.NodeError{ID: id, Wrapped: dynamo.ErrUnknownNode}
	}
	return portrait, nil
}

// PhasePortraitToASCII plots the portrait on a width x height character
// grid, with a velocity-zero axis when it is in range.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// 10% margin on each side; flat ranges get a unit span.
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return col, row
	}

	if minY <= 0 && minY+rangeY >= 0 {
		_, row := toCell(minX, 0)
		for col := 0; col < width; col++ {
			grid[row][col] = '─'
		}
	}

	for _, p := range portrait.Points {
		col, row := toCell(p.X, p.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
