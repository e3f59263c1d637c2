package formula

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndEval(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		vars   []string
		params map[string]float64
		vals   []float64
		want   float64
	}{
		{"constant", "2.5", nil, nil, nil, 2.5},
		{"integer literal", "3", nil, nil, nil, 3},
		{"parameter", "c*u", []string{"u"}, map[string]float64{"c": 0.5}, []float64{4}, 2},
		{"friction", "-alpha*u", []string{"u"}, map[string]float64{"alpha": 0.5}, []float64{2}, -1},
		{"time and space", "t*x", []string{"t", "x"}, nil, []float64{2, 3}, 6},
		{"relaxation", "1/(sigma+0.5)", nil, map[string]float64{"sigma": 0.5}, nil, 1},
		{"function", "exp(-x)", []string{"x"}, nil, []float64{0}, 1},
		{"integer argument", "sqrt(4)", nil, nil, nil, 2},
		{"pi", "sin(pi/2)", nil, nil, nil, 1},
		{"power", "pow(x, 2) + x**2", []string{"x"}, nil, []float64{3}, 18},
		{"heaviside", "heaviside(x-0.5)", []string{"x"}, nil, []float64{0.7}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.src, tt.vars, tt.params)
			require.NoError(t, err)
			got, err := f.Eval(tt.vals...)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("  ", nil, nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Compile("u + v", []string{"u"}, nil)
	assert.Error(t, err, "unknown identifier must fail")

	_, err = Compile("sin", []string{"sin"}, nil)
	assert.ErrorIs(t, err, ErrReservedName)
}

func TestEvalArity(t *testing.T) {
	f := MustCompile("u", []string{"u"}, nil)
	_, err := f.Eval()
	assert.ErrorIs(t, err, ErrArity)
}

func TestEvalNotNumeric(t *testing.T) {
	f := MustCompile(`u > 0`, []string{"u"}, nil)
	_, err := f.Eval(1)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestConstant(t *testing.T) {
	v, err := Constant("LA*2", map[string]float64{"LA": 1.5})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestIsSymbol(t *testing.T) {
	assert.True(t, IsSymbol(" u ", "u"))
	assert.False(t, IsSymbol("0.5*u", "u"))
}

func TestConcurrentEval(t *testing.T) {
	f := MustCompile("a*x + 1", []string{"x"}, map[string]float64{"a": 2})

	var wg sync.WaitGroup
	errs := make([]float64, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				x := float64(w*1000 + i)
				got, err := f.Eval(x)
				if err != nil || got != 2*x+1 {
					errs[w] = math.NaN()
					return
				}
			}
		}(w)
	}
	wg.Wait()
	for w, e := range errs {
		assert.False(t, math.IsNaN(e), "worker %d saw a wrong value", w)
	}
}

func TestBuiltins(t *testing.T) {
	names := Builtins()
	assert.Contains(t, names, "exp")
	assert.Contains(t, names, "pow")
}
