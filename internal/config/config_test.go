package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SpaceStep <= 0 {
		t.Error("space step should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a := GetPreset("friction")
	a.SetParam("alpha", 10)
	b := GetPreset("friction")
	assert.Equal(t, 0.5, b.Parameters["alpha"])
}

func TestParseDictionary(t *testing.T) {
	doc := `
box:
  x: [0, 2]
  label: -1
space_step: 0.125
scheme_velocity: LA
schemes:
  - velocities: [1, 2]
    conserved_moments: [u]
    polynomials: [1, LA*X]
    equilibrium: [u, c*u]
    relaxation_parameters: [0, 1.9]
    source_terms:
      u: -alpha*u
    init:
      u: 1
parameters:
  LA: 1
  c: 0.5
  alpha: 0.1
generator: parallel
boundary_conditions:
  0:
    method: neumann
duration: 0.5
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, [2]float64{0, 2}, cfg.Box.X)
	assert.Equal(t, [2]int{-1, -1}, cfg.Box.Label.Pair())
	assert.Equal(t, Expr("LA*X"), cfg.Schemes[0].Polynomials[1])
	assert.Equal(t, Expr("1.9"), cfg.Schemes[0].RelaxationParameters[1])
	assert.Equal(t, Expr("-alpha*u"), cfg.Schemes[0].SourceTerms["u"])
	assert.Equal(t, Expr("1"), cfg.Schemes[0].Init["u"])
	assert.Equal(t, GeneratorParallel, cfg.Generator)
	assert.Equal(t, "rk4", cfg.ODESolver)
	assert.Equal(t, MethodNeumann, cfg.BoundaryConditions[0].Method)
	assert.NoError(t, cfg.Validate())
}

func TestLabelsList(t *testing.T) {
	cfg, err := Parse([]byte("box: {x: [0, 1], label: [3, 4]}\n"))
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 4}, cfg.Box.Label.Pair())

	assert.Equal(t, [2]int{0, 0}, Labels(nil).Pair())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "friction.yaml")
	cfg := GetPreset("friction")
	require.NoError(t, Save(path, cfg))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Schemes[0].SourceTerms, loaded.Schemes[0].SourceTerms)
	assert.Equal(t, cfg.Parameters, loaded.Parameters)
	assert.Equal(t, cfg.Exact, loaded.Exact)
	assert.NoError(t, loaded.Validate())
}

func TestValidateCollectsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"space step", func(c *Config) { c.SpaceStep = 0 }, "space_step"},
		{"box", func(c *Config) { c.Box.X = [2]float64{1, 0} }, "box"},
		{"polynomials", func(c *Config) { c.Schemes[0].Polynomials = c.Schemes[0].Polynomials[:1] }, "polynomials"},
		{"source", func(c *Config) { c.Schemes[0].SourceTerms = map[string]Expr{"w": "1"} }, "unknown moment"},
		{"generator", func(c *Config) { c.Generator = "cython" }, "generator"},
		{"solver", func(c *Config) { c.ODESolver = "rk45" }, "ode_solver"},
		{"one periodic end", func(c *Config) { c.Box.Label = Labels{-1, 0} }, "periodic"},
		{"three labels", func(c *Config) { c.Box.Label = Labels{-1, -1, 0} }, "one value or a pair, got 3"},
		{"missing boundary", func(c *Config) { c.Box.Label = Labels{3} }, "no method for label 3"},
		{"unknown method", func(c *Config) {
			c.Box.Label = Labels{0}
			c.BoundaryConditions = map[int]BoundaryConfig{0: {Method: "bouzidi"}}
		}, "unknown method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestDuplicateConservedMoment(t *testing.T) {
	cfg := GetPreset("wave")
	cfg.Schemes[1].ConservedMoments = []string{"u"}
	cfg.Schemes[1].Equilibrium[0] = "u"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}
