package scheme

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lbmsim/internal/config"
)

func d1q2(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("friction")
	cfg.SpaceStep = 0.25
	cfg.SchemeVelocity = "LA"
	cfg.SetParam("LA", 2)
	cfg.SetParam("c", 0.5)
	cfg.SetParam("s", 1.5)
	return cfg
}

func TestMomentMatrix(t *testing.T) {
	sc, err := New(d1q2(t))
	require.NoError(t, err)

	assert.Equal(t, 2.0, sc.LA)
	assert.Equal(t, 0.125, sc.Dt)
	assert.Equal(t, []int{1, -1}, sc.Velocities())

	want := mat.NewDense(2, 2, []float64{1, 1, 2, -2})
	assert.True(t, mat.EqualApprox(want, sc.MomentMatrix(0), 1e-14))

	wantInv := mat.NewDense(2, 2, []float64{0.5, 0.25, 0.5, -0.25})
	assert.True(t, mat.EqualApprox(wantInv, sc.InverseMatrix(0), 1e-14))
}

func TestF2MRoundTrip(t *testing.T) {
	sc, err := New(d1q2(t))
	require.NoError(t, err)

	f := []float64{0.7, 0.2}
	m := make([]float64, 2)
	back := make([]float64, 2)
	sc.F2M(0, f, m)
	sc.M2F(0, m, back)

	assert.InDelta(t, 0.9, m[0], 1e-15)
	assert.InDelta(t, 1.0, m[1], 1e-15)
	if diff := cmp.Diff(f, back, cmpopts.EquateApprox(0, 1e-14)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEquilibriumAndRelaxation(t *testing.T) {
	sc, err := New(d1q2(t))
	require.NoError(t, err)

	cons := []float64{2}
	eq := make([]float64, 2)
	require.NoError(t, sc.Equilibrium(0, cons, eq))
	assert.Equal(t, []float64{2, 1}, eq)

	m := []float64{2, 0}
	sc.Relax(0, m, eq)
	assert.InDelta(t, 2, m[0], 0)
	assert.InDelta(t, 1.5, m[1], 1e-15)
	assert.Equal(t, []float64{0, 1.5}, sc.Relaxation(0))
}

func TestSourceAndInit(t *testing.T) {
	sc, err := New(d1q2(t))
	require.NoError(t, err)
	require.True(t, sc.HasSource())

	dcons := make([]float64, 1)
	require.NoError(t, sc.SourceRHS(0.3, 0.1, []float64{2}, dcons, make([]float64, 0, 3)))
	assert.InDelta(t, -1.0, dcons[0], 1e-15)

	cons := make([]float64, 1)
	require.NoError(t, sc.Init(0.3, cons))
	assert.InDelta(t, 1.0, cons[0], 1e-15)

	require.NoError(t, sc.Init(0.35, cons))
	assert.InDelta(t, math.Exp(-0.5), cons[0], 1e-12)
}

func TestCoupledSchemes(t *testing.T) {
	cfg := config.GetPreset("wave")
	sc, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"u", "v"}, sc.Conserved)
	assert.Equal(t, 4, sc.NumDistributions())
	assert.Equal(t, 2, sc.Offset(1))
	assert.False(t, sc.HasSource())

	c := cfg.Parameters["c"]
	cons := []float64{3, 0.5}
	eq := make([]float64, 2)
	require.NoError(t, sc.Equilibrium(0, cons, eq))
	assert.Equal(t, []float64{3, 0.5}, eq)
	require.NoError(t, sc.Equilibrium(1, cons, eq))
	assert.InDelta(t, 0.5, eq[0], 0)
	assert.InDelta(t, c*c*3, eq[1], 1e-15)

	m := []float64{0, 0}
	sc.ScatterConserved(1, cons, m)
	assert.Equal(t, []float64{0.5, 0}, m)

	got := make([]float64, 2)
	sc.GatherConserved(0, []float64{7, 1}, got)
	assert.Equal(t, 7.0, got[0])
}

func TestSchemeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"singular", func(c *config.Config) {
			c.Schemes[0].Polynomials = []config.Expr{"1", "1"}
		}, ErrSingularMoments},
		{"no conserved equilibrium", func(c *config.Config) {
			c.Schemes[0].Equilibrium = []config.Expr{"2*u", "c*u"}
		}, ErrConservedMoment},
		{"negative scheme velocity", func(c *config.Config) {
			c.SchemeVelocity = "-1"
		}, ErrSchemeVelocity},
		{"collision", func(c *config.Config) {
			c.SetParam("u", 1)
		}, ErrNameCollision},
		{"reserved", func(c *config.Config) {
			c.Schemes[0].ConservedMoments = []string{"t"}
		}, ErrReservedVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := d1q2(t)
			tt.mutate(cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestUnknownSymbolInEquilibrium(t *testing.T) {
	cfg := d1q2(t)
	cfg.Schemes[0].Equilibrium = []config.Expr{"u", "q*u"}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	sc, err := New(d1q2(t))
	require.NoError(t, err)
	out := sc.String()
	assert.Contains(t, out, "Scheme informations")
	assert.Contains(t, out, "conserved moments: [u]")
	assert.Contains(t, out, "source term: du/dt = -alpha*u")
}
