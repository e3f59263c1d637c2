package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT returns the Fourier coefficients of a real sequence of any length,
// modes 0 through len(data)/2.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fourier.NewFFT(len(data)).Coefficients(nil, data)
}

// PowerSpectrum returns the amplitude of every mode from 0 to len(data)/2.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	ps := make([]float64, len(f))

	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}

	return ps
}

// DominantMode is the index of the largest non constant mode.
func DominantMode(ps []float64) int {
	best := 0
	for i := 1; i < len(ps); i++ {
		if best == 0 || ps[i] > ps[best] {
			best = i
		}
	}
	return best
}
