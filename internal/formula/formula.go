// Package formula compiles the scalar expressions that describe a scheme:
// equilibria, moment polynomials, relaxation rates, source terms, initial
// conditions and exact solutions.
//
// Parameters are bound once at compile time; variables are supplied on each
// evaluation in the order given to Compile. Unknown identifiers are rejected
// when the expression is compiled.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrEmpty        = errors.New("formula: empty expression")
	ErrNotNumeric   = errors.New("formula: expression does not evaluate to a number")
	ErrArity        = errors.New("formula: wrong number of values")
	ErrReservedName = errors.New("formula: name is reserved")
)

type Formula struct {
	src     string
	vars    []string
	params  map[string]float64
	program *vm.Program
	pool    sync.Pool
}

type evalState struct {
	env     map[string]any
	machine vm.VM
}

// Compile parses src. vars are the names filled at evaluation time, params
// are constants available to the expression.
func Compile(src string, vars []string, params map[string]float64) (*Formula, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmpty
	}

	for _, name := range vars {
		if isReserved(name) {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
		}
	}

	f := &Formula{
		src:    src,
		vars:   append([]string(nil), vars...),
		params: make(map[string]float64, len(params)),
	}
	for k, v := range params {
		f.params[k] = v
	}

	program, err := expr.Compile(src, append(functions(), expr.Env(f.newEnv()))...)
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", src, err)
	}
	f.program = program
	f.pool.New = func() any { return &evalState{env: f.newEnv()} }
	return f, nil
}

// MustCompile is like Compile but panics on error. Intended for presets and tests.
func MustCompile(src string, vars []string, params map[string]float64) *Formula {
	f, err := Compile(src, vars, params)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formula) newEnv() map[string]any {
	env := make(map[string]any, len(f.vars)+len(f.params)+2)
	env["pi"] = math.Pi
	env["e"] = math.E
	for k, v := range f.params {
		env[k] = v
	}
	for _, name := range f.vars {
		env[name] = 0.0
	}
	return env
}

// Eval evaluates the expression. vals are matched to the compiled variables
// by position. Safe for concurrent use.
func (f *Formula) Eval(vals ...float64) (float64, error) {
	if len(vals) != len(f.vars) {
		return 0, fmt.Errorf("%w: %q expects %d, got %d", ErrArity, f.src, len(f.vars), len(vals))
	}

	st := f.pool.Get().(*evalState)
	defer f.pool.Put(st)

	for i, name := range f.vars {
		st.env[name] = vals[i]
	}
	out, err := st.machine.Run(f.program, st.env)
	if err != nil {
		return 0, fmt.Errorf("formula %q: %w", f.src, err)
	}
	return toFloat(out)
}

func (f *Formula) Source() string { return f.src }
func (f *Formula) Vars() []string { return append([]string(nil), f.vars...) }

// Constant evaluates an expression that only depends on parameters.
func Constant(src string, params map[string]float64) (float64, error) {
	f, err := Compile(src, nil, params)
	if err != nil {
		return 0, err
	}
	return f.Eval()
}

// IsSymbol reports whether src is exactly the identifier name.
func IsSymbol(src, name string) bool {
	return strings.TrimSpace(src) == name
}

// Builtins lists the function names available in every expression.
func Builtins() []string {
	names := make([]string, 0, len(unary)+2)
	for name := range unary {
		names = append(names, name)
	}
	names = append(names, "pow", "atan2")
	sort.Strings(names)
	return names
}

var unary = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"tanh": math.Tanh,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"atan": math.Atan,
	"sign": sign,
	"heaviside": func(x float64) float64 {
		if x >= 0 {
			return 1
		}
		return 0
	},
}

func functions() []expr.Option {
	opts := make([]expr.Option, 0, len(unary)+2)
	for name, fn := range unary {
		fn := fn
		name := name
		opts = append(opts, expr.Function(name, func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("%s: expects 1 argument, got %d", name, len(params))
			}
			x, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			return fn(x), nil
		}))
	}
	opts = append(opts,
		expr.Function("pow", binary("pow", math.Pow)),
		expr.Function("atan2", binary("atan2", math.Atan2)),
	)
	return opts
}

func binary(name string, fn func(a, b float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("%s: expects 2 arguments, got %d", name, len(params))
		}
		a, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w (got %T)", ErrNotNumeric, v)
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func isReserved(name string) bool {
	if name == "pi" || name == "e" || name == "pow" || name == "atan2" {
		return true
	}
	_, ok := unary[name]
	return ok
}
