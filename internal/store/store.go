package store

import (
	"fmt"
	"math"

	"github.com/san-kum/orbits/internal/dynamo"
)

// Store holds the authoritative node set and viewport bounds of one
// visualization instance. It is not safe for concurrent use; sim.Session
// serialises access.
type Store struct {
	nodes      []dynamo.Node
	bounds     dynamo.Bounds
	generation uint64
}

// New validates nodes and returns a store owning a private copy of them.
func New(nodes []dynamo.Node, bounds dynamo.Bounds) (*Store, error) {
	if len(nodes) == 0 {
		return nil, dynamo.ErrNoNodes
	}

	seen := make(map[dynamo.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			return nil, &dynamo.NodeError{ID: n.ID, Wrapped: dynamo.ErrDuplicateID}
		}
		seen[n.ID] = struct{}{}

		if !dynamo.IsFinite(n.Mass) || n.Mass <= 0 {
			return nil, &dynamo.NodeError{ID: n.ID, Wrapped: dynamo.ErrInvalidMass}
		}
		if !n.IsValid() {
			return nil, &dynamo.NodeError{ID: n.ID, Wrapped: dynamo.ErrInvalidPosition}
		}
	}

	return &Store{
		nodes:  dynamo.CloneNodes(nodes),
		bounds: dynamo.Bounds{Width: initialExtent(bounds.Width), Height: initialExtent(bounds.Height)},
	}, nil
}

// initialExtent keeps a positive or +Inf dimension as given; anything else
// is treated as unmeasured. Each axis is judged on its own, so a store may
// be walled on one axis and open on the other.
func initialExtent(v float64) float64 {
	if math.IsInf(v, 1) || (dynamo.IsFinite(v) && v > 0) {
		return v
	}
	return 0
}

// Nodes returns a copy of the current node set in stable order.
func (s *Store) Nodes() []dynamo.Node {
	return dynamo.CloneNodes(s.nodes)
}

func (s *Store) Len() int { return len(s.nodes) }

func (s *Store) Node(id dynamo.NodeID) (dynamo.Node, bool) {
	i := dynamo.IndexOf(s.nodes, id)
	if i < 0 {
		return dynamo.Node{}, false
	}
	return s.nodes[i], true
}

func (s *Store) Bounds() dynamo.Bounds { return s.bounds }

// Generation counts committed replacements.
func (s *Store) Generation() uint64 { return s.generation }

// Replace commits a new node set. The set must carry the stored identities in
// the stored order; mass, color and label always come from the stored nodes.
func (s *Store) Replace(next []dynamo.Node) error {
	if len(next) != len(s.nodes) {
		return fmt.Errorf("replace %d nodes with %d: %w", len(s.nodes), len(next), dynamo.ErrNodeSetMismatch)
	}
	for i := range next {
		if next[i].ID != s.nodes[i].ID {
			return &dynamo.NodeError{ID: next[i].ID, Wrapped: dynamo.ErrNodeSetMismatch}
		}
	}

	committed := make([]dynamo.Node, len(next))
	for i, n := range next {
		prev := s.nodes[i]
		n.Mass, n.Color, n.Label = prev.Mass, prev.Color, prev.Label
		committed[i] = n
	}

	s.nodes = committed
	s.generation++
	return nil
}

// Resize updates the bounds only. Nodes outside the new bounds are pulled
// back by the next step. Degenerate sizes are ignored, and so are infinite
// ones: walls can only be opened when the store is created.
func (s *Store) Resize(width, height float64) bool {
	if !dynamo.IsFinite(width) || !dynamo.IsFinite(height) || width <= 0 || height <= 0 {
		return false
	}
	s.bounds = dynamo.Bounds{Width: width, Height: height}
	return true
}
