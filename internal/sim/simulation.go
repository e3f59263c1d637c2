// Package sim runs a lattice-Boltzmann scheme on a 1D domain. One time step
// fills the halo from the boundary conditions, streams every distribution
// along its velocity and applies the collision with the source terms split
// around the relaxation.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/domain"
	"github.com/san-kum/lbmsim/internal/logging"
	"github.com/san-kum/lbmsim/internal/scheme"
)

const minChunk = 64

type Option func(*Simulation)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWorkers sets the number of goroutines of the collision. Values below
// one run serially.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		s.workers = n
	}
}

type Simulation struct {
	cfg    *config.Config
	scheme *scheme.Scheme
	domain *domain.Domain

	// f and buf are indexed [distribution][halo index].
	f, buf [][]float64
	// cons is indexed [conserved moment][halo index].
	cons [][]float64

	velocities []int
	boundaries []*boundary
	periodic   bool
	cells      *cellPool

	t  float64
	nt int

	workers int
	log     *slog.Logger

	errMu sync.Mutex
	err   error
}

// New validates cfg, compiles its scheme, builds the domain and initializes
// every distribution at equilibrium.
func New(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := scheme.New(cfg)
	if err != nil {
		return nil, err
	}
	cells, err := newCellPool(sc, cfg.ODESolver)
	if err != nil {
		return nil, err
	}
	labels := cfg.Box.Label.Pair()
	dom, err := domain.New(cfg.Box.X[0], cfg.Box.X[1], cfg.SpaceStep, labels, sc.Stencil)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:        cfg,
		scheme:     sc,
		domain:     dom,
		velocities: sc.Velocities(),
		periodic:   labels[0] == domain.LabelPeriodic,
		cells:      cells,
		log:        logging.Discard(),
	}
	if cfg.Generator == config.GeneratorParallel {
		s.workers = runtime.NumCPU()
	}
	for _, opt := range opts {
		opt(s)
	}

	s.boundaries, err = buildBoundaries(cfg, dom, sc)
	if err != nil {
		return nil, err
	}

	size := dom.Size()
	nd := sc.NumDistributions()
	s.f = make([][]float64, nd)
	s.buf = make([][]float64, nd)
	for q := range s.f {
		s.f[q] = make([]float64, size)
		s.buf[q] = make([]float64, size)
	}
	s.cons = make([][]float64, len(sc.Conserved))
	for g := range s.cons {
		s.cons[g] = make([]float64, size)
	}

	if err := s.initialize(); err != nil {
		return nil, err
	}

	s.log.Debug("simulation ready",
		"cells", dom.N, "dx", dom.Dx, "dt", sc.Dt,
		"distributions", nd, "boundaries", len(s.boundaries), "workers", s.workers)
	return s, nil
}

// initialize sets every distribution to the equilibrium of the initial
// conserved moments.
func (s *Simulation) initialize() error {
	start, end := s.domain.Interior()
	c := s.cells.Get()
	defer s.cells.Put(c)

	for i := start; i < end; i++ {
		if err := s.scheme.Init(s.domain.XHalo[i], c.cons); err != nil {
			return fmt.Errorf("init at x=%g: %w", s.domain.XHalo[i], err)
		}
		for k := 0; k < s.scheme.NumSchemes(); k++ {
			if err := s.scheme.Equilibrium(k, c.cons, c.eq[k]); err != nil {
				return fmt.Errorf("equilibrium at x=%g: %w", s.domain.XHalo[i], err)
			}
			s.scheme.M2F(k, c.eq[k], c.f[k])
			off := s.scheme.Offset(k)
			for j, v := range c.f[k] {
				s.f[off+j][i] = v
			}
		}
		for g, v := range c.cons {
			s.cons[g][i] = v
		}
	}
	return nil
}

// Reset restores the initial state.
func (s *Simulation) Reset() error {
	for q := range s.f {
		clear(s.f[q])
		clear(s.buf[q])
	}
	s.t, s.nt = 0, 0
	s.err = nil
	return s.initialize()
}

// OneTimeStep advances the simulation by dt.
func (s *Simulation) OneTimeStep() error {
	if err := s.applyBoundaries(); err != nil {
		return &StepError{Step: s.nt, Time: s.t, Wrapped: err}
	}
	s.transport()
	if err := s.collide(); err != nil {
		return &StepError{Step: s.nt, Time: s.t, Wrapped: err}
	}
	s.t += s.scheme.Dt
	s.nt++
	return nil
}

func (s *Simulation) applyBoundaries() error {
	if s.periodic {
		periodic(s.f, s.domain.Halo, s.domain.N)
	}
	for _, b := range s.boundaries {
		if err := b.apply(s.f, s.t); err != nil {
			return err
		}
	}
	return nil
}

// transport streams f_q(i) <- f_q(i - v_q) on the interior cells.
func (s *Simulation) transport() {
	start, end := s.domain.Interior()
	for q, v := range s.velocities {
		copy(s.buf[q][start:end], s.f[q][start-v:end-v])
	}
	s.f, s.buf = s.buf, s.f
}

func (s *Simulation) collide() error {
	start, end := s.domain.Interior()
	s.err = nil
	ParallelFor(s.workers, end-start, minChunk, func(lo, hi int) {
		c := s.cells.Get()
		defer s.cells.Put(c)
		for i := start + lo; i < start+hi; i++ {
			s.collideCell(c, i)
			if c.err != nil {
				s.setErr(fmt.Errorf("x=%g: %w", s.domain.XHalo[i], c.err))
				return
			}
		}
	})
	if s.err != nil {
		return s.err
	}

	for g := range s.cons {
		for i := start; i < end; i++ {
			v := s.cons[g][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s at x=%g", ErrUnstable, s.scheme.Conserved[g], s.domain.XHalo[i])
			}
		}
	}
	return nil
}

func (s *Simulation) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Simulation) collideCell(c *cell, i int) {
	sc := s.scheme
	ns := sc.NumSchemes()
	half := sc.Dt / 2
	c.x = s.domain.XHalo[i]

	for k := 0; k < ns; k++ {
		off := sc.Offset(k)
		for j := range c.f[k] {
			c.f[k][j] = s.f[off+j][i]
		}
		sc.F2M(k, c.f[k], c.m[k])
		sc.GatherConserved(k, c.m[k], c.cons)
	}

	source := sc.HasSource()
	if source {
		c.solver.Step(c.rhs, s.t, c.cons, half)
		if c.err != nil {
			return
		}
	}

	for k := 0; k < ns; k++ {
		sc.ScatterConserved(k, c.cons, c.m[k])
		if err := sc.Equilibrium(k, c.cons, c.eq[k]); err != nil {
			c.err = err
			return
		}
		sc.Relax(k, c.m[k], c.eq[k])
	}

	if source {
		c.solver.Step(c.rhs, s.t+half, c.cons, half)
		if c.err != nil {
			return
		}
	}

	for k := 0; k < ns; k++ {
		sc.ScatterConserved(k, c.cons, c.m[k])
		sc.M2F(k, c.m[k], c.f[k])
		off := sc.Offset(k)
		for j, v := range c.f[k] {
			s.f[off+j][i] = v
		}
	}
	for g, v := range c.cons {
		s.cons[g][i] = v
	}
}

// Run advances the simulation until t reaches duration, notifying the
// observers after every step. It returns the number of steps taken.
func (s *Simulation) Run(ctx context.Context, duration float64, observers ...Observer) (int, error) {
	steps := 0
	stop := duration - s.scheme.Dt/2
	for s.t < stop {
		select {
		case <-ctx.Done():
			return steps, &StepError{Step: s.nt, Time: s.t, Wrapped: fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())}
		default:
		}

		if err := s.OneTimeStep(); err != nil {
			s.log.Warn("simulation stopped", "step", s.nt, "t", s.t, "err", err)
			return steps, err
		}
		steps++
		for _, o := range observers {
			o.OnStep(s)
		}
		s.log.Log(ctx, logging.LevelTrace, "step", "nt", s.nt, "t", s.t)
	}
	s.log.Info("simulation finished", "steps", steps, "t", s.t)
	return steps, nil
}

func (s *Simulation) T() float64  { return s.t }
func (s *Simulation) NT() int     { return s.nt }
func (s *Simulation) Dt() float64 { return s.scheme.Dt }

// X returns the cell centres of the interior.
func (s *Simulation) X() []float64 {
	return append([]float64(nil), s.domain.X...)
}

func (s *Simulation) Scheme() *scheme.Scheme { return s.scheme }
func (s *Simulation) Domain() *domain.Domain { return s.domain }
func (s *Simulation) Config() *config.Config { return s.cfg }

// Moment returns a copy of a conserved moment on the interior cells.
func (s *Simulation) Moment(name string) (Field, error) {
	g, ok := s.scheme.ConservedIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMoment, name)
	}
	start, end := s.domain.Interior()
	return Field(s.cons[g][start:end]).Clone(), nil
}

// Moments returns every conserved moment keyed by name.
func (s *Simulation) Moments() map[string]Field {
	start, end := s.domain.Interior()
	out := make(map[string]Field, len(s.cons))
	for g, name := range s.scheme.Conserved {
		out[name] = Field(s.cons[g][start:end]).Clone()
	}
	return out
}

// Distributions returns a copy of every distribution on the interior cells.
func (s *Simulation) Distributions() [][]float64 {
	start, end := s.domain.Interior()
	out := make([][]float64, len(s.f))
	for q := range s.f {
		out[q] = append([]float64(nil), s.f[q][start:end]...)
	}
	return out
}

func (s *Simulation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Simulation %s\n", s.cfg.Name)
	fmt.Fprintf(&sb, "  time: %g (step %d)\n", s.t, s.nt)
	fmt.Fprintf(&sb, "  ode solver: %s\n", s.odeSolver())
	sb.WriteString(s.domain.String())
	sb.WriteString(s.scheme.String())
	return sb.String()
}

func (s *Simulation) odeSolver() string {
	c := s.cells.Get()
	defer s.cells.Put(c)
	return c.solver.Name()
}
