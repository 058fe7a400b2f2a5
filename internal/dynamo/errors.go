package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors. These only surface at construction and IO boundaries; the
// per-frame path never fails.
var (
	// ErrNoNodes indicates an empty node set where at least one body is required.
	ErrNoNodes = errors.New("orbits: node set is empty")

	// ErrDuplicateID indicates two nodes share an identity.
	ErrDuplicateID = errors.New("orbits: duplicate node id")

	// ErrInvalidMass indicates a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("orbits: mass must be positive and finite")

	// ErrInvalidPosition indicates a non-finite initial position or velocity.
	ErrInvalidPosition = errors.New("orbits: position and velocity must be finite")

	// ErrNodeSetMismatch indicates a replacement set whose identities differ
	// from the stored set.
	ErrNodeSetMismatch = errors.New("orbits: replacement node set does not match stored identities")

	// ErrUnknownNode indicates a lookup for an id that is not in the store.
	ErrUnknownNode = errors.New("orbits: unknown node")

	// ErrSessionClosed indicates an operation on a torn-down session.
	ErrSessionClosed = errors.New("orbits: session closed")
)

// NodeError wraps an error with the offending node.
type NodeError struct {
	ID      NodeID
	Wrapped error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d: %v", e.ID, e.Wrapped)
}

func (e *NodeError) Unwrap() error {
	return e.Wrapped
}
