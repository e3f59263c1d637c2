package integrators

import (
	"math"
	"testing"
)

// y' = -y
func decay(t float64, y, dy []float64) {
	dy[0] = -y[0]
}

// y' = t, exact for every second order solver
func ramp(t float64, y, dy []float64) {
	dy[0] = t
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"euler", "heun", "middle_point", "rk4"} {
		s, err := New(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("expected %s, got %s", name, s.Name())
		}
	}

	if s, err := New(""); err != nil || s.Name() != "rk4" {
		t.Errorf("empty name should default to rk4, got %v, %v", s, err)
	}

	if _, err := New("rk45"); err == nil {
		t.Error("expected error for unknown solver")
	}
}

func TestDecayAccuracy(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"euler", 5e-3},
		{"heun", 5e-5},
		{"middle_point", 5e-5},
		{"rk4", 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := New(tt.name)
			y := []float64{1}
			dt := 0.01
			for i := 0; i < 100; i++ {
				s.Step(decay, float64(i)*dt, y, dt)
			}
			if err := math.Abs(y[0] - math.Exp(-1)); err > tt.tol {
				t.Errorf("error %.3e exceeds %.1e", err, tt.tol)
			}
		})
	}
}

func TestRampIsExact(t *testing.T) {
	for _, name := range []string{"heun", "middle_point", "rk4"} {
		t.Run(name, func(t *testing.T) {
			s, _ := New(name)
			y := []float64{1}
			dt := 0.1
			for i := 0; i < 10; i++ {
				s.Step(ramp, float64(i)*dt, y, dt)
			}
			if math.Abs(y[0]-1.5) > 1e-12 {
				t.Errorf("expected 1.5, got %.15f", y[0])
			}
		})
	}
}

func TestRK4Amplification(t *testing.T) {
	s := NewRK4()
	z := 0.3
	y := []float64{1}
	s.Step(decay, 0, y, z)

	want := 1 - z + z*z/2 - z*z*z/6 + z*z*z*z/24
	if math.Abs(y[0]-want) > 1e-14 {
		t.Errorf("expected %.16f, got %.16f", want, y[0])
	}
}
