package sim

import (
	"testing"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/scheme"
)

func TestCellPool_Solver(t *testing.T) {
	sc, err := scheme.New(config.DefaultConfig())
	if err != nil {
		t.Fatalf("scheme.New: %v", err)
	}

	if _, err := newCellPool(sc, "rk45"); err == nil {
		t.Fatal("expected an error for an unknown ode solver")
	}

	p, err := newCellPool(sc, "heun")
	if err != nil {
		t.Fatalf("newCellPool: %v", err)
	}
	c := p.Get()
	defer p.Put(c)
	if got := c.solver.Name(); got != "heun" {
		t.Errorf("solver = %q, want heun", got)
	}
}
