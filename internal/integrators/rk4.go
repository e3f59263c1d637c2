package integrators

type RK4 struct {
	s scratch
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(rhs RHS, t float64, y []float64, dt float64) {
	n := len(y)
	r.s.ensure(n)

	rhs(t, y, r.s.k1)

	for i := 0; i < n; i++ {
		r.s.tmp[i] = y[i] + dt*0.5*r.s.k1[i]
	}
	rhs(t+dt*0.5, r.s.tmp, r.s.k2)

	for i := 0; i < n; i++ {
		r.s.tmp[i] = y[i] + dt*0.5*r.s.k2[i]
	}
	rhs(t+dt*0.5, r.s.tmp, r.s.k3)

	for i := 0; i < n; i++ {
		r.s.tmp[i] = y[i] + dt*r.s.k3[i]
	}
	rhs(t+dt, r.s.tmp, r.s.k4)

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		y[i] += dt6 * (r.s.k1[i] + 2*r.s.k2[i] + 2*r.s.k3[i] + r.s.k4[i])
	}
}
