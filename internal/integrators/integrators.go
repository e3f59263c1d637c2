// Package integrators provides the explicit ODE solvers used to integrate
// source terms over a fraction of a lattice time step.
package integrators

import "fmt"

// RHS computes dy = f(t, y). dy has the length of y and must be fully written.
type RHS func(t float64, y, dy []float64)

// Solver advances y from t to t+dt in place.
type Solver interface {
	Name() string
	Step(rhs RHS, t float64, y []float64, dt float64)
}

var registry = map[string]func() Solver{
	"euler":        func() Solver { return NewEuler() },
	"heun":         func() Solver { return NewHeun() },
	"middle_point": func() Solver { return NewMiddlePoint() },
	"rk4":          func() Solver { return NewRK4() },
}

// New returns a fresh solver. Solvers keep scratch buffers and must not be
// shared between goroutines.
func New(name string) (Solver, error) {
	if name == "" {
		name = "rk4"
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown ode solver: %s", name)
	}
	return fn(), nil
}

type scratch struct {
	k1, k2, k3, k4 []float64
	tmp            []float64
}

func (s *scratch) ensure(n int) {
	if len(s.k1) != n {
		s.k1 = make([]float64, n)
		s.k2 = make([]float64, n)
		s.k3 = make([]float64, n)
		s.k4 = make([]float64, n)
		s.tmp = make([]float64, n)
	}
}
