package metrics

import (
	"math"
)

// Stability is the fraction of observations whose field stays finite and
// below the threshold in absolute value.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t float64, x, u []float64) {
	s.samples++
	for _, val := range u {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Max is the largest |u| seen over all observations.
type Max struct {
	name string
	max  float64
}

func NewMax() *Max {
	return &Max{name: "max"}
}

func (m *Max) Name() string { return m.name }

func (m *Max) Observe(t float64, x, u []float64) {
	for _, v := range u {
		m.max = math.Max(m.max, math.Abs(v))
	}
}

func (m *Max) Value() float64 { return m.max }

func (m *Max) Reset() { m.max = 0 }
