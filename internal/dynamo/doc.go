// Package dynamo provides the core primitives shared by the orbit simulation.
//
// The package defines the value types every other package speaks:
//
//   - [Vec2]: 2D vector in viewport pixel space
//   - [Node]: a massive body with identity, position, velocity and display attributes
//   - [Bounds]: the viewport extent used for boundary collision
//   - [StepStats]: per-step counters reported by the stepper
//
// # Example
//
//	nodes := []dynamo.Node{
//	    {ID: 1, Pos: dynamo.Vec2{X: 200, Y: 200}, Mass: 1},
//	    {ID: 2, Pos: dynamo.Vec2{X: 250, Y: 200}, Mass: 4},
//	}
//	st, _ := store.New(nodes, dynamo.Bounds{Width: 900, Height: 600})
//
// # Thread Safety
//
// Values are plain data. Shared mutable state lives in [store.Store] and is
// serialised by [sim.Session].
package dynamo
