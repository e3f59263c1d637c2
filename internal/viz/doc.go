// Package viz renders simulated fields in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: steps a simulation on every tick and plots the field
//   - [Plot]: one-shot asciigraph rendering of one or more profiles
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial condition
//	+/-   - Double/halve the steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
