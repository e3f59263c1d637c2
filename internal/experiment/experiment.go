// Package experiment runs a configured simulation, samples snapshots of
// its conserved moments and collects metrics.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/formula"
	"github.com/san-kum/lbmsim/internal/logging"
	"github.com/san-kum/lbmsim/internal/metrics"
	"github.com/san-kum/lbmsim/internal/sim"
)

// defaultSnapshots is the number of snapshots taken when the configuration
// does not set sample_every.
const defaultSnapshots = 20

var ErrNoExact = errors.New("experiment: no exact solution for the field")

// Result holds the sampled snapshots of a run. Fields[name][k] is the moment
// at Times[k] on X.
type Result struct {
	Name    string                 `json:"name"`
	Times   []float64              `json:"times"`
	X       []float64              `json:"x"`
	Fields  map[string][][]float64 `json:"fields"`
	Metrics map[string]float64     `json:"metrics"`
	Steps   int                    `json:"steps"`
	Dt      float64                `json:"dt"`
	Dx      float64                `json:"dx"`
}

// Last returns the last snapshot of a field.
func (r *Result) Last(field string) ([]float64, bool) {
	snaps, ok := r.Fields[field]
	if !ok || len(snaps) == 0 {
		return nil, false
	}
	return snaps[len(snaps)-1], true
}

// FieldNames returns the sampled moments sorted by name.
func (r *Result) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithWorkers(n int) Option {
	return func(e *Experiment) { e.workers = n }
}

// WithMetrics replaces the default metrics.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

type Experiment struct {
	cfg     *config.Config
	sim     *sim.Simulation
	metrics []metrics.Metric
	workers int
	log     *slog.Logger
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	e := &Experiment{cfg: cfg, workers: -1, log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}

	simOpts := []sim.Option{sim.WithLogger(e.log)}
	if e.workers >= 0 {
		simOpts = append(simOpts, sim.WithWorkers(e.workers))
	}
	s, err := sim.New(cfg, simOpts...)
	if err != nil {
		return nil, err
	}
	e.sim = s

	if e.metrics == nil {
		e.metrics, err = DefaultMetrics(s, cfg)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// DefaultMetrics tracks the first conserved moment: its mass and drift, its
// maximum, a stability check and, when an exact solution is configured, the
// relative L2 error.
func DefaultMetrics(s *sim.Simulation, cfg *config.Config) ([]metrics.Metric, error) {
	dx := s.Domain().Dx
	ms := []metrics.Metric{
		metrics.NewMass(dx),
		metrics.NewMassDrift(dx),
		metrics.NewMax(),
		metrics.NewStability(1e6),
	}
	field := cfg.ConservedMoments()[0]
	if src, ok := cfg.Exact[field]; ok {
		f, err := formula.Compile(string(src), []string{"t", "x"}, s.Scheme().Params())
		if err != nil {
			return nil, fmt.Errorf("exact solution for %q: %w", field, err)
		}
		ms = append(ms, metrics.NewExactError(f))
	}
	return ms, nil
}

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *sim.Simulation {
	return e.sim
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

// Run simulates up to the configured duration. On failure the snapshots
// taken so far are returned with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	s := e.sim
	if s.NT() > 0 {
		if err := s.Reset(); err != nil {
			return nil, err
		}
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	every := e.cfg.SampleEvery
	if every <= 0 {
		total := int(e.cfg.Duration/s.Dt() + 0.5)
		every = max(1, total/defaultSnapshots)
	}

	res := &Result{
		Name:   e.cfg.Name,
		X:      s.X(),
		Fields: make(map[string][][]float64),
		Dt:     s.Dt(),
		Dx:     s.Domain().Dx,
	}
	lastSample := -1
	sample := func(s *sim.Simulation) {
		res.Times = append(res.Times, s.T())
		for name, u := range s.Moments() {
			res.Fields[name] = append(res.Fields[name], u)
		}
		lastSample = s.NT()
		e.log.Log(ctx, logging.LevelTrace, "snapshot", "nt", s.NT(), "t", s.T())
	}

	field := e.cfg.ConservedMoments()[0]
	observe := metrics.Observer(field, e.metrics...)
	sample(s)
	observe.OnStep(s)

	steps, err := s.Run(ctx, e.cfg.Duration, observe, sim.ObserverFunc(func(s *sim.Simulation) {
		if s.NT()%every == 0 {
			sample(s)
		}
	}))
	// an unstable step leaves non-finite moments behind
	if lastSample != s.NT() && !errors.Is(err, sim.ErrUnstable) {
		sample(s)
	}
	res.Steps = steps
	res.Metrics = metrics.Values(e.metrics)

	if err != nil {
		return res, err
	}
	e.log.Debug("experiment finished", "name", e.cfg.Name, "steps", steps, "snapshots", len(res.Times))
	return res, nil
}
