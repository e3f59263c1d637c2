// Package analysis compares simulated fields with exact solutions.
//
//   - [L2Error], [LInfError] and [RelativeL2Error]: grid norms of the error
//   - [ConvergenceOrder]: experimental order between successive refinements
//   - [ExactSolution]: evaluates an exact formula in (t, x) on a grid
//   - [PowerSpectrum]: Fourier amplitudes of a field
//
// # Convergence
//
// Errors measured on grids with steps dx_i give the order
//
//	p_i = log(e_i / e_{i+1}) / log(dx_i / dx_{i+1})
//
// A second order scheme gives p close to 2 once dx is small enough.
package analysis
