package metrics

import (
	"math"

	"github.com/san-kum/lbmsim/internal/analysis"
	"github.com/san-kum/lbmsim/internal/formula"
)

// ExactError is the relative L2 error against an exact solution in (t, x)
// at the last observation. It is NaN when the exact formula fails.
type ExactError struct {
	name  string
	exact *formula.Formula
	err   float64
}

func NewExactError(exact *formula.Formula) *ExactError {
	return &ExactError{name: "exact_error", exact: exact}
}

func (e *ExactError) Name() string { return e.name }

func (e *ExactError) Observe(t float64, x, u []float64) {
	ref, err := analysis.ExactSolution(e.exact, t, x)
	if err != nil {
		e.err = math.NaN()
		return
	}
	rel, err := analysis.RelativeL2Error(u, ref)
	if err != nil {
		e.err = math.NaN()
		return
	}
	e.err = rel
}

func (e *ExactError) Value() float64 { return e.err }

func (e *ExactError) Reset() { e.err = 0 }
