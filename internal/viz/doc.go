// Package viz renders a live orbit session in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one session with mouse drag and fling
//   - [Canvas]: colored braille raster, 2x4 dots per cell
//   - [RunInteractive]: preset picker with a small setup screen
//
// One braille dot covers [DotScale] viewport pixels, so the session's
// viewport tracks the terminal size.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	R     - Rebuild the session from its configuration
//	E / H - Toggle edges / halos
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	Esc   - Drop the held node
//	?     - Show help overlay
//
// # Recording
//
// G starts and stops recording; the frames are written to orbits_<time>.gif
// in the current directory.
package viz
