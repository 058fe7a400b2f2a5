package physics

// Params holds the tunable constants of the orbit model. Units are viewport
// pixels and frames.
type Params struct {
	// G scales pairwise attraction.
	G float64
	// Friction multiplies every velocity once per step, before gravity.
	Friction float64
	// Bounce is the fraction of normal speed kept after a wall hit.
	Bounce float64
	// Padding is the inset of the collision walls from the viewport edge.
	Padding float64
	// MinDistance floors the pair distance used in the force law.
	MinDistance float64
	// BaseRadius and RadiusScale give the collision radius
	// BaseRadius + mass*RadiusScale.
	BaseRadius  float64
	RadiusScale float64
}

// DefaultParams returns the constants the visualization ships with.
func DefaultParams() Params {
	return Params{
		G:           0.5,
		Friction:    1 - 0.0001,
		Bounce:      0.7,
		Padding:     60,
		MinDistance: 5,
		RadiusScale: 30,
	}
}

// BoundaryRadius returns the collision radius of a node of the given mass.
func (p Params) BoundaryRadius(mass float64) float64 {
	return p.BaseRadius + mass*p.RadiusScale
}
