package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbits/internal/dynamo"
)

type ExportNode struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Mass  float64 `json:"mass"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
}

type ExportData struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Generation uint64       `json:"generation"`
	Nodes      []ExportNode `json:"nodes"`
}

// Snapshot converts the current store contents to the export shape.
func (s *Store) Snapshot() ExportData {
	w, h := s.bounds.Extent()
	data := ExportData{
		Width:      w,
		Height:     h,
		Generation: s.generation,
		Nodes:      make([]ExportNode, len(s.nodes)),
	}
	for i, n := range s.nodes {
		data.Nodes[i] = exportNode(n)
	}
	return data
}

func exportNode(n dynamo.Node) ExportNode {
	return ExportNode{
		ID:    int(n.ID),
		Label: n.Label,
		Color: n.Color,
		Mass:  n.Mass,
		X:     n.Pos.X,
		Y:     n.Pos.Y,
		VX:    n.Vel.X,
		VY:    n.Vel.Y,
	}
}

func (s *Store) ExportJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s.Snapshot())
}

func (s *Store) ExportJSONFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.ExportJSON(file)
}
