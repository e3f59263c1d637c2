package metrics

import (
	"math"
)

// Mass is the integral of the field at the last observation.
type Mass struct {
	name string
	dx   float64
	mass float64
}

func NewMass(dx float64) *Mass {
	return &Mass{name: "mass", dx: dx}
}

func (m *Mass) Name() string { return m.name }

func (m *Mass) Observe(t float64, x, u []float64) {
	m.mass = integral(u, m.dx)
}

func (m *Mass) Value() float64 { return m.mass }

func (m *Mass) Reset() { m.mass = 0 }

func integral(u []float64, dx float64) float64 {
	sum := 0.0
	for _, v := range u {
		sum += v
	}
	return sum * dx
}

// MassDrift is the largest relative change of the mass since the first
// observation.
type MassDrift struct {
	name     string
	dx       float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift(dx float64) *MassDrift {
	return &MassDrift{name: "mass_drift", dx: dx}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(t float64, x, u []float64) {
	mass := integral(u, m.dx)
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++

	drift := math.Abs(mass - m.initial)
	if m.initial != 0 {
		drift /= math.Abs(m.initial)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
