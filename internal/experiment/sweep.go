package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/lbmsim/internal/analysis"
	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/formula"
)

// Sweep runs every configuration in its own goroutine. Results keep the
// order of cfgs; the first error is returned.
func Sweep(ctx context.Context, cfgs []*config.Config, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(idx int, cfg *config.Config) {
			defer wg.Done()

			exp, err := New(cfg, append([]Option{WithWorkers(1)}, opts...)...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i, cfg)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i, cfgs[i].Name, err)
		}
	}

	return results, nil
}

type ConvergenceReport struct {
	Field  string    `json:"field"`
	Dx     []float64 `json:"dx"`
	Errors []float64 `json:"errors"`
	Orders []float64 `json:"orders"`
}

// Convergence runs cfg for every space step and measures the L2 error of
// the first conserved moment against its exact solution at the final time.
func Convergence(ctx context.Context, cfg *config.Config, dxs []float64, opts ...Option) (*ConvergenceReport, error) {
	field := cfg.ConservedMoments()[0]
	src, ok := cfg.Exact[field]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoExact, field)
	}
	exact, err := formula.Compile(string(src), []string{"t", "x"}, cfg.Parameters)
	if err != nil {
		return nil, fmt.Errorf("exact solution for %q: %w", field, err)
	}

	cfgs := make([]*config.Config, len(dxs))
	for i, dx := range dxs {
		c := cfg.Clone()
		c.SpaceStep = dx
		// only the final snapshot is needed
		c.SampleEvery = 1 << 30
		cfgs[i] = c
	}

	results, err := Sweep(ctx, cfgs, opts...)
	if err != nil {
		return nil, err
	}

	report := &ConvergenceReport{Field: field, Dx: dxs, Errors: make([]float64, len(dxs))}
	for i, res := range results {
		u, _ := res.Last(field)
		ref, err := analysis.ExactSolution(exact, res.Times[len(res.Times)-1], res.X)
		if err != nil {
			return nil, err
		}
		report.Errors[i], err = analysis.L2Error(u, ref, res.Dx)
		if err != nil {
			return nil, err
		}
	}
	report.Orders, err = analysis.ConvergenceOrder(dxs, report.Errors)
	if err != nil {
		return nil, err
	}
	return report, nil
}
