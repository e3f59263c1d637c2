package sim

import "math"

// Field holds the values of one moment on the interior cells.
type Field []float64

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sum is the plain sum of the values; multiply by dx for an integral.
func (f Field) Sum() float64 {
	s := 0.0
	for _, v := range f {
		s += v
	}
	return s
}

func (f Field) MaxAbs() float64 {
	m := 0.0
	for _, v := range f {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func (f Field) Norm() float64 {
	sum := 0.0
	for _, v := range f {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Observer is notified after every time step.
type Observer interface {
	OnStep(s *Simulation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s *Simulation)

func (f ObserverFunc) OnStep(s *Simulation) { f(s) }
