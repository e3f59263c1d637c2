package sim

import (
	"fmt"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/domain"
	"github.com/san-kum/lbmsim/internal/formula"
	"github.com/san-kum/lbmsim/internal/lattice"
	"github.com/san-kum/lbmsim/internal/scheme"
)

// link is a population of distribution dist leaving interior cell cell.
// The boundary fills ghost with the population of distribution opp that
// re-enters cell on the next transport.
type link struct {
	dist  int
	opp   int
	cell  int
	ghost int
}

type boundary struct {
	label  int
	method string
	value  *formula.Formula
	links  []link
	// wall position of every link, aligned with links.
	wall []float64
}

// buildBoundaries turns the domain links of every non periodic label into
// per-distribution links.
func buildBoundaries(cfg *config.Config, dom *domain.Domain, sc *scheme.Scheme) ([]*boundary, error) {
	var out []*boundary
	for _, label := range dom.Labels() {
		if label < 0 {
			continue
		}
		bc, ok := cfg.BoundaryConditions[label]
		if !ok {
			return nil, fmt.Errorf("%w: no method for label %d", ErrBoundary, label)
		}
		b := &boundary{label: label, method: bc.Method}

		switch bc.Method {
		case config.MethodBounceBack, config.MethodAntiBounceBack, config.MethodNeumann:
		default:
			return nil, fmt.Errorf("%w: label %d: unknown method %q", ErrBoundary, label, bc.Method)
		}

		if bc.Method != config.MethodNeumann && bc.Value != "" {
			f, err := formula.Compile(string(bc.Value), []string{"t", "x"}, sc.Params())
			if err != nil {
				return nil, fmt.Errorf("%w: label %d value: %v", ErrBoundary, label, err)
			}
			b.value = f
		}

		st := dom.Stencil()
		for _, l := range dom.Links(label) {
			number := st.UniqueVelocities()[l.Q]
			v := lattice.VelocityFromNumber(number)
			for s := 0; s < sc.NumSchemes(); s++ {
				j, jo := indexOf(sc, s, number), indexOf(sc, s, lattice.Opposite(number))
				if j < 0 {
					continue
				}
				if jo < 0 {
					return nil, fmt.Errorf("%w: label %d: scheme %d has velocity %d but not its opposite",
						ErrBoundary, label, s, v)
				}
				b.links = append(b.links, link{
					dist:  sc.Offset(s) + j,
					opp:   sc.Offset(s) + jo,
					cell:  l.I,
					ghost: l.I + v,
				})
				if v < 0 {
					b.wall = append(b.wall, dom.XMin)
				} else {
					b.wall = append(b.wall, dom.XMax)
				}
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func indexOf(sc *scheme.Scheme, s, number int) int {
	nums := sc.Numbers()[sc.Offset(s) : sc.Offset(s)+sc.Size(s)]
	for j, n := range nums {
		if n == number {
			return j
		}
	}
	return -1
}

// apply fills the ghost populations of the boundary at time t.
func (b *boundary) apply(f [][]float64, t float64) error {
	for k, l := range b.links {
		value := 0.0
		if b.value != nil {
			v, err := b.value.Eval(t, b.wall[k])
			if err != nil {
				return fmt.Errorf("boundary %d: %w", b.label, err)
			}
			value = v
		}
		switch b.method {
		case config.MethodBounceBack:
			f[l.opp][l.ghost] = f[l.dist][l.cell] + value
		case config.MethodAntiBounceBack:
			f[l.opp][l.ghost] = -f[l.dist][l.cell] + value
		case config.MethodNeumann:
			f[l.opp][l.ghost] = f[l.opp][l.cell]
		}
	}
	return nil
}

// periodic copies the interior cells next to each end into the halo of the
// opposite end.
func periodic(f [][]float64, halo, n int) {
	for _, fq := range f {
		for j := 0; j < halo; j++ {
			fq[j] = fq[j+n]
			fq[halo+n+j] = fq[halo+j]
		}
	}
}
