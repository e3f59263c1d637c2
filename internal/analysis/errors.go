package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lbmsim/internal/formula"
)

var (
	ErrLengthMismatch = errors.New("analysis: slices have different lengths")
	ErrEmpty          = errors.New("analysis: empty input")
)

func check(u, ref []float64) error {
	if len(u) != len(ref) {
		return fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(u), len(ref))
	}
	if len(u) == 0 {
		return ErrEmpty
	}
	return nil
}

// L2Error is the discrete L2 norm sqrt(dx * sum (u - ref)^2).
func L2Error(u, ref []float64, dx float64) (float64, error) {
	if err := check(u, ref); err != nil {
		return 0, err
	}
	return math.Sqrt(dx) * floats.Distance(u, ref, 2), nil
}

func LInfError(u, ref []float64) (float64, error) {
	if err := check(u, ref); err != nil {
		return 0, err
	}
	return floats.Distance(u, ref, math.Inf(1)), nil
}

// RelativeL2Error is |u - ref| / |ref|. It falls back to the absolute error
// when ref vanishes.
func RelativeL2Error(u, ref []float64) (float64, error) {
	if err := check(u, ref); err != nil {
		return 0, err
	}
	d := floats.Distance(u, ref, 2)
	n := floats.Norm(ref, 2)
	if n == 0 {
		return d, nil
	}
	return d / n, nil
}

// ExactSolution evaluates f, a formula in (t, x), at time t on xs.
func ExactSolution(f *formula.Formula, t float64, xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		v, err := f.Eval(t, x)
		if err != nil {
			return nil, fmt.Errorf("exact solution at x=%g: %w", x, err)
		}
		out[i] = v
	}
	return out, nil
}

// ConvergenceOrder returns the order between each pair of successive
// refinements, so len(dxs)-1 values.
func ConvergenceOrder(dxs, errs []float64) ([]float64, error) {
	if err := check(dxs, errs); err != nil {
		return nil, err
	}
	orders := make([]float64, 0, len(dxs)-1)
	for i := 0; i+1 < len(dxs); i++ {
		if errs[i] <= 0 || errs[i+1] <= 0 || dxs[i] == dxs[i+1] {
			orders = append(orders, math.NaN())
			continue
		}
		orders = append(orders, math.Log(errs[i]/errs[i+1])/math.Log(dxs[i]/dxs[i+1]))
	}
	return orders, nil
}
