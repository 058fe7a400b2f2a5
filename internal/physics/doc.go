// Package physics implements the per-frame orbit model.
//
// [Gravity.Step] is a pure function of the previous node set and the
// viewport bounds. Each step runs, per node:
//
//  1. velocity *= Friction
//  2. velocity += Σ G·m_other/max(d, MinDistance)² toward every other node
//  3. position += velocity
//  4. clamp into the padded walls, reflecting velocity inward scaled by Bounce
//  5. replace non-finite values
//
// Accelerations always read pre-step positions, so the result does not
// depend on node order.
//
//	g := physics.NewGravity(physics.DefaultParams(), nil)
//	next, stats := g.Step(st.Nodes(), st.Bounds())
package physics
