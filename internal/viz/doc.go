// Package viz provides a terminal monitor for running deposition simulations.
//
// The monitor is a Bubble Tea program that steps a [sim.Simulator] in the
// background and renders a Braille projection of the particles next to a
// temperature chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Double/halve steps per frame
//	V     - Toggle side (XZ) and top (XY) projection
//	T     - Cycle color themes
//	Q     - Quit
package viz
