// Package optim searches scheme parameters for the best value of a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/experiment"
)

var (
	ErrNoCandidate = errors.New("optim: no parameter set produced the metric")
	ErrRanges      = errors.New("optim: one range per parameter is required")
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search evaluates every point of the grid and returns the parameters with
// the smallest metric. Failed runs are recorded in the trials and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("%w: %d names, %d ranges", ErrRanges, len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams, &trials)

	if err := ctx.Err(); err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("%w %q", ErrNoCandidate, metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		defer func() { *trials = append(*trials, trial) }()

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			return
		}

		result, err := exp.Run(ctx)
		if err != nil {
			trial.Err = err
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			trial.Err = fmt.Errorf("metric %q not reported", metricName)
			return
		}
		trial.Value = val
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams, trials)
	}
}

// Tune grid searches the parameters of cfg for the smallest metric.
func Tune(
	ctx context.Context,
	cfg *config.Config,
	params []string,
	ranges [][]float64,
	metricName string,
	opts ...experiment.Option,
) (map[string]float64, float64, []Trial, error) {
	g := NewGridSearch(params, ranges)
	return g.Search(ctx, func(values map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		for name, v := range values {
			c.SetParam(name, v)
		}
		return experiment.New(c, opts...)
	}, metricName)
}
