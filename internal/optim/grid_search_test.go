package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lbmsim/internal/config"
)

func TestTune_FindsLeastDiffusiveRelaxation(t *testing.T) {
	cfg := config.GetPreset("advection")
	cfg.Duration = 0.25

	best, value, trials, err := Tune(context.Background(), cfg,
		[]string{"s"}, [][]float64{{1.0, 1.5, 1.9}}, "exact_error")
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if len(trials) != 3 {
		t.Errorf("got %d trials, want 3", len(trials))
	}
	if best["s"] != 1.9 {
		t.Errorf("best s = %v, want 1.9 (trials %+v)", best["s"], trials)
	}
	if value <= 0 || math.IsNaN(value) {
		t.Errorf("best value = %v", value)
	}
}

func TestGridSearch_Errors(t *testing.T) {
	cfg := config.DefaultConfig()

	_, _, _, err := Tune(context.Background(), cfg, []string{"s"}, nil, "mass")
	if !errors.Is(err, ErrRanges) {
		t.Errorf("err = %v, want ErrRanges", err)
	}

	_, _, trials, err := Tune(context.Background(), cfg, []string{"s"}, [][]float64{{1}}, "missing")
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v, want ErrNoCandidate", err)
	}
	if len(trials) != 1 || trials[0].Err == nil {
		t.Errorf("trials = %+v, want one failed trial", trials)
	}
}
