// Package analysis characterises recorded and simulated orbit runs.
//
//   - [EnergySpectrum]: power spectrum of the kinetic energy series
//   - [LyapunovExponent]: divergence rate of two nearby node sets
//   - [GeneratePhasePortrait]: one node's position against its velocity
//
// # Chaos Detection
//
// A positive exponent means nearby layouts drift apart:
//
//	lambda := analysis.LyapunovExponent(g, nodes, bounds, 2000, 1e-6)
//	if lambda > 0 {
//	    // sensitive to initial placement
//	}
package analysis
