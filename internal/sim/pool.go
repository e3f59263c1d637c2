package sim

import (
	"sync"

	"github.com/san-kum/lbmsim/internal/integrators"
	"github.com/san-kum/lbmsim/internal/scheme"
)

// cell holds the per-cell buffers of the collision. Each goroutine takes
// its own cell from the pool.
type cell struct {
	sc     *scheme.Scheme
	f      [][]float64
	m      [][]float64
	eq     [][]float64
	cons   []float64
	args   []float64
	solver integrators.Solver
	x      float64
	err    error
	rhs    integrators.RHS
}

func (c *cell) sourceRHS(t float64, y, dy []float64) {
	if err := c.sc.SourceRHS(t, c.x, y, dy, c.args); err != nil && c.err == nil {
		c.err = err
	}
}

type cellPool struct {
	pool sync.Pool
}

func newCellPool(sc *scheme.Scheme, solverName string) (*cellPool, error) {
	// pool.New cannot return an error, so the name is checked here
	if _, err := integrators.New(solverName); err != nil {
		return nil, err
	}
	p := &cellPool{}
	p.pool.New = func() any {
		solver, _ := integrators.New(solverName)
		c := &cell{
			sc:     sc,
			f:      make([][]float64, sc.NumSchemes()),
			m:      make([][]float64, sc.NumSchemes()),
			eq:     make([][]float64, sc.NumSchemes()),
			cons:   make([]float64, len(sc.Conserved)),
			args:   make([]float64, 0, len(sc.Conserved)+2),
			solver: solver,
		}
		for s := 0; s < sc.NumSchemes(); s++ {
			n := sc.Size(s)
			c.f[s] = make([]float64, n)
			c.m[s] = make([]float64, n)
			c.eq[s] = make([]float64, n)
		}
		c.rhs = c.sourceRHS
		return c
	}
	return p, nil
}

func (p *cellPool) Get() *cell {
	c := p.pool.Get().(*cell)
	c.err = nil
	return c
}

func (p *cellPool) Put(c *cell) {
	p.pool.Put(c)
}
