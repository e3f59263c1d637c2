package integrators

type Euler struct {
	s scratch
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(rhs RHS, t float64, y []float64, dt float64) {
	e.s.ensure(len(y))
	rhs(t, y, e.s.k1)
	for i := range y {
		y[i] += dt * e.s.k1[i]
	}
}

// Heun is the explicit trapezoidal rule.
type Heun struct {
	s scratch
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Name() string { return "heun" }

func (h *Heun) Step(rhs RHS, t float64, y []float64, dt float64) {
	n := len(y)
	h.s.ensure(n)
	rhs(t, y, h.s.k1)
	for i := 0; i < n; i++ {
		h.s.tmp[i] = y[i] + dt*h.s.k1[i]
	}
	rhs(t+dt, h.s.tmp, h.s.k2)
	for i := 0; i < n; i++ {
		y[i] += 0.5 * dt * (h.s.k1[i] + h.s.k2[i])
	}
}

type MiddlePoint struct {
	s scratch
}

func NewMiddlePoint() *MiddlePoint {
	return &MiddlePoint{}
}

func (m *MiddlePoint) Name() string { return "middle_point" }

func (m *MiddlePoint) Step(rhs RHS, t float64, y []float64, dt float64) {
	n := len(y)
	m.s.ensure(n)
	rhs(t, y, m.s.k1)
	for i := 0; i < n; i++ {
		m.s.tmp[i] = y[i] + 0.5*dt*m.s.k1[i]
	}
	rhs(t+0.5*dt, m.s.tmp, m.s.k2)
	for i := 0; i < n; i++ {
		y[i] += dt * m.s.k2[i]
	}
}
