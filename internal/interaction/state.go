package interaction

import (
	"time"

	"github.com/san-kum/orbits/internal/dynamo"
)

// State is the drag state of a Controller: either Free or Captured.
type State interface {
	isState()
}

// Free means no node is held.
type Free struct{}

// Captured means the pointer holds node ID. Offset keeps the grab point
// fixed relative to the node centre. LastPos and LastTime are the most
// recent drag sample; HasSample is false until the first move.
type Captured struct {
	ID        dynamo.NodeID
	Offset    dynamo.Vec2
	LastPos   dynamo.Vec2
	LastTime  time.Time
	HasSample bool
}

func (Free) isState()     {}
func (Captured) isState() {}
