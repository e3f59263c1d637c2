// Package scheme compiles a lattice-Boltzmann configuration into numeric
// operators: the moment matrix of every elementary scheme and its inverse,
// the relaxation rates, the equilibrium functions, the source terms and the
// initial conditions.
//
// Moments of an elementary scheme are m = M f with M[k][j] = P_k(v_j), where
// P_k are the polynomials of the scheme evaluated at the lattice velocity X.
// A conserved moment is the moment whose equilibrium is the moment itself.
package scheme

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/formula"
	"github.com/san-kum/lbmsim/internal/lattice"
)

var (
	ErrSingularMoments  = errors.New("scheme: moment matrix is not invertible")
	ErrConservedMoment  = errors.New("scheme: conserved moment has no matching equilibrium")
	ErrSchemeVelocity   = errors.New("scheme: scheme velocity must be positive")
	ErrNameCollision    = errors.New("scheme: moment name collides with a parameter")
	ErrReservedVariable = errors.New("scheme: moment name is reserved")
)

type block struct {
	numbers    []int
	velocities []int
	offset     int

	polynomials []string
	M, Minv     *mat.Dense
	m, minv     [][]float64

	relax []float64
	eq    []*formula.Formula
	// conserved maps a moment index of the block to the global conserved index.
	conserved map[int]int
}

type Scheme struct {
	Stencil   *lattice.Stencil
	LA        float64
	Dx, Dt    float64
	Conserved []string

	params map[string]float64
	blocks []*block
	index  map[string]int
	source []*formula.Formula
	init   []*formula.Formula
	cfg    *config.Config
}

// New compiles cfg. The configuration is expected to have been validated.
func New(cfg *config.Config) (*Scheme, error) {
	numbers := make([][]int, len(cfg.Schemes))
	for i, s := range cfg.Schemes {
		numbers[i] = s.Velocities
	}
	st, err := lattice.NewStencil(numbers)
	if err != nil {
		return nil, err
	}

	params := make(map[string]float64, len(cfg.Parameters))
	for k, v := range cfg.Parameters {
		params[k] = v
	}

	la, err := formula.Constant(string(cfg.SchemeVelocity), params)
	if err != nil {
		return nil, fmt.Errorf("scheme velocity: %w", err)
	}
	if la <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrSchemeVelocity, la)
	}

	sc := &Scheme{
		Stencil:   st,
		LA:        la,
		Dx:        cfg.SpaceStep,
		Dt:        cfg.SpaceStep / la,
		Conserved: cfg.ConservedMoments(),
		params:    params,
		index:     make(map[string]int),
		cfg:       cfg,
	}
	for i, name := range sc.Conserved {
		if name == "t" || name == "x" || name == "X" {
			return nil, fmt.Errorf("%w: %q", ErrReservedVariable, name)
		}
		if _, ok := params[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrNameCollision, name)
		}
		sc.index[name] = i
	}

	offset := 0
	for i, s := range cfg.Schemes {
		b, err := sc.compileBlock(i, s, offset)
		if err != nil {
			return nil, fmt.Errorf("scheme %d: %w", i, err)
		}
		sc.blocks = append(sc.blocks, b)
		offset += len(b.numbers)
	}

	if err := sc.compileSourceAndInit(cfg); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Scheme) compileBlock(i int, s config.SchemeConfig, offset int) (*block, error) {
	n := len(s.Velocities)
	b := &block{
		numbers:     append([]int(nil), s.Velocities...),
		velocities:  sc.Stencil.SchemeVelocities(i),
		offset:      offset,
		polynomials: make([]string, n),
		relax:       make([]float64, n),
		eq:          make([]*formula.Formula, n),
		conserved:   make(map[int]int),
	}

	data := make([]float64, 0, n*n)
	for k, p := range s.Polynomials {
		b.polynomials[k] = string(p)
		poly, err := formula.Compile(string(p), []string{"X"}, sc.params)
		if err != nil {
			return nil, fmt.Errorf("polynomial %d: %w", k, err)
		}
		for _, v := range b.velocities {
			val, err := poly.Eval(float64(v))
			if err != nil {
				return nil, fmt.Errorf("polynomial %d: %w", k, err)
			}
			data = append(data, val)
		}
	}
	b.M = mat.NewDense(n, n, data)

	var inv mat.Dense
	if err := inv.Inverse(b.M); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMoments, err)
	}
	b.Minv = &inv
	b.m = toRows(b.M)
	b.minv = toRows(b.Minv)

	for k, r := range s.RelaxationParameters {
		val, err := formula.Constant(string(r), sc.params)
		if err != nil {
			return nil, fmt.Errorf("relaxation parameter %d: %w", k, err)
		}
		b.relax[k] = val
	}

	for k, e := range s.Equilibrium {
		for _, name := range s.ConservedMoments {
			if formula.IsSymbol(string(e), name) {
				b.conserved[k] = sc.index[name]
			}
		}
		if _, ok := b.conserved[k]; ok {
			continue
		}
		f, err := formula.Compile(string(e), sc.Conserved, sc.params)
		if err != nil {
			return nil, fmt.Errorf("equilibrium %d: %w", k, err)
		}
		b.eq[k] = f
	}

	for _, name := range s.ConservedMoments {
		found := false
		for _, g := range b.conserved {
			if g == sc.index[name] {
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrConservedMoment, name)
		}
	}
	return b, nil
}

func (sc *Scheme) compileSourceAndInit(cfg *config.Config) error {
	sc.source = make([]*formula.Formula, len(sc.Conserved))
	sc.init = make([]*formula.Formula, len(sc.Conserved))
	vars := append(append([]string(nil), sc.Conserved...), "t", "x")

	for _, s := range cfg.Schemes {
		for name, src := range s.SourceTerms {
			f, err := formula.Compile(string(src), vars, sc.params)
			if err != nil {
				return fmt.Errorf("source term %q: %w", name, err)
			}
			sc.source[sc.index[name]] = f
		}
		for name, src := range s.Init {
			f, err := formula.Compile(string(src), []string{"x"}, sc.params)
			if err != nil {
				return fmt.Errorf("init %q: %w", name, err)
			}
			sc.init[sc.index[name]] = f
		}
	}
	return nil
}

func toRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

func (sc *Scheme) NumSchemes() int { return len(sc.blocks) }

// NumDistributions is the total number of distributions over all schemes.
func (sc *Scheme) NumDistributions() int {
	n := 0
	for _, b := range sc.blocks {
		n += len(b.numbers)
	}
	return n
}

// Velocities returns the velocity of every distribution in global order.
func (sc *Scheme) Velocities() []int {
	vs := make([]int, 0, sc.NumDistributions())
	for _, b := range sc.blocks {
		vs = append(vs, b.velocities...)
	}
	return vs
}

// Numbers returns the velocity number of every distribution in global order.
func (sc *Scheme) Numbers() []int {
	ns := make([]int, 0, sc.NumDistributions())
	for _, b := range sc.blocks {
		ns = append(ns, b.numbers...)
	}
	return ns
}

// Offset returns the position of the first distribution of scheme s.
func (sc *Scheme) Offset(s int) int { return sc.blocks[s].offset }

// Size returns the number of velocities of scheme s.
func (sc *Scheme) Size(s int) int { return len(sc.blocks[s].numbers) }

func (sc *Scheme) MomentMatrix(s int) *mat.Dense  { return mat.DenseCopyOf(sc.blocks[s].M) }
func (sc *Scheme) InverseMatrix(s int) *mat.Dense { return mat.DenseCopyOf(sc.blocks[s].Minv) }
func (sc *Scheme) Relaxation(s int) []float64     { return append([]float64(nil), sc.blocks[s].relax...) }

// ConservedIndex returns the global index of a conserved moment.
func (sc *Scheme) ConservedIndex(name string) (int, bool) {
	i, ok := sc.index[name]
	return i, ok
}

// HasSource reports whether any conserved moment carries a source term.
func (sc *Scheme) HasSource() bool {
	for _, f := range sc.source {
		if f != nil {
			return true
		}
	}
	return false
}

// F2M computes the moments of scheme s from its distributions.
func (sc *Scheme) F2M(s int, f, m []float64) {
	matVec(sc.blocks[s].m, f, m)
}

// M2F computes the distributions of scheme s from its moments.
func (sc *Scheme) M2F(s int, m, f []float64) {
	matVec(sc.blocks[s].minv, m, f)
}

func matVec(a [][]float64, x, y []float64) {
	for i, row := range a {
		sum := 0.0
		for j, v := range row {
			sum += v * x[j]
		}
		y[i] = sum
	}
}

// GatherConserved copies the conserved moments of scheme s from m into cons.
func (sc *Scheme) GatherConserved(s int, m, cons []float64) {
	for k, g := range sc.blocks[s].conserved {
		cons[g] = m[k]
	}
}

// ScatterConserved copies the conserved moments back into the moments of scheme s.
func (sc *Scheme) ScatterConserved(s int, cons, m []float64) {
	for k, g := range sc.blocks[s].conserved {
		m[k] = cons[g]
	}
}

// Equilibrium evaluates the equilibrium moments of scheme s.
func (sc *Scheme) Equilibrium(s int, cons, out []float64) error {
	b := sc.blocks[s]
	for k := range out {
		if g, ok := b.conserved[k]; ok {
			out[k] = cons[g]
			continue
		}
		v, err := b.eq[k].Eval(cons...)
		if err != nil {
			return err
		}
		out[k] = v
	}
	return nil
}

// Relax applies m_k += s_k (m_k^eq - m_k) to the non conserved moments.
func (sc *Scheme) Relax(s int, m, eq []float64) {
	b := sc.blocks[s]
	for k := range m {
		if _, ok := b.conserved[k]; ok {
			continue
		}
		m[k] += b.relax[k] * (eq[k] - m[k])
	}
}

// SourceRHS evaluates the source terms for all conserved moments.
func (sc *Scheme) SourceRHS(t, x float64, cons, dcons []float64, args []float64) error {
	n := len(cons)
	args = append(args[:0], cons...)
	args = append(args, t, x)
	for g := 0; g < n; g++ {
		f := sc.source[g]
		if f == nil {
			dcons[g] = 0
			continue
		}
		v, err := f.Eval(args...)
		if err != nil {
			return err
		}
		dcons[g] = v
	}
	return nil
}

// Init evaluates the initial conserved moments at x.
func (sc *Scheme) Init(x float64, cons []float64) error {
	for g, f := range sc.init {
		if f == nil {
			cons[g] = 0
			continue
		}
		v, err := f.Eval(x)
		if err != nil {
			return err
		}
		cons[g] = v
	}
	return nil
}

// Param returns a bound parameter.
func (sc *Scheme) Param(name string) (float64, bool) {
	v, ok := sc.params[name]
	return v, ok
}

func (sc *Scheme) Params() map[string]float64 {
	out := make(map[string]float64, len(sc.params))
	for k, v := range sc.params {
		out[k] = v
	}
	return out
}

func (sc *Scheme) String() string {
	var sb strings.Builder
	sb.WriteString("Scheme informations\n")
	sb.WriteString("  spatial dimension: 1\n")
	fmt.Fprintf(&sb, "  number of schemes: %d\n", len(sc.blocks))
	fmt.Fprintf(&sb, "  number of velocities: %d\n", sc.NumDistributions())
	fmt.Fprintf(&sb, "  velocities value: %v\n", sc.Velocities())
	fmt.Fprintf(&sb, "  scheme velocity: %g (dx=%.4e, dt=%.4e)\n", sc.LA, sc.Dx, sc.Dt)
	fmt.Fprintf(&sb, "  conserved moments: %v\n", sc.Conserved)

	names := make([]string, 0, len(sc.params))
	for k := range sc.params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&sb, "  parameter %s = %g\n", k, sc.params[k])
	}

	for i, b := range sc.blocks {
		cfg := sc.cfg.Schemes[i]
		fmt.Fprintf(&sb, "  scheme %d\n", i)
		fmt.Fprintf(&sb, "    velocities: %v\n", b.velocities)
		fmt.Fprintf(&sb, "    polynomials: [%s]\n", strings.Join(b.polynomials, ", "))
		fmt.Fprintf(&sb, "    equilibrium: [%s]\n", joinExpr(cfg.Equilibrium))
		fmt.Fprintf(&sb, "    relaxation parameters: %v\n", b.relax)
		for _, name := range cfg.ConservedMoments {
			if src, ok := cfg.SourceTerms[name]; ok {
				fmt.Fprintf(&sb, "    source term: d%s/dt = %s\n", name, src)
			}
		}
		fmt.Fprintf(&sb, "    moment matrix:\n%v\n", mat.Formatted(b.M, mat.Prefix("      "), mat.Squeeze()))
		fmt.Fprintf(&sb, "    inverse:\n%v\n", mat.Formatted(b.Minv, mat.Prefix("      "), mat.Squeeze()))
	}
	return sb.String()
}

func joinExpr(es []config.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}
