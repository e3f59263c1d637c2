// Package domain builds the 1D computational domain of a lattice-Boltzmann
// simulation: the cell centres, the halo points added on each side and, for
// every velocity, the cells whose populations leave the box during transport.
package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/lbmsim/internal/lattice"
)

const (
	ValIn  = 999
	ValOut = -1

	// LabelPeriodic marks an end of the box that wraps around.
	LabelPeriodic = -1
	// LabelInterface marks an end shared with a neighbouring subdomain; no
	// boundary links are generated for it.
	LabelInterface = -2
)

var (
	ErrBoxNotMultiple = errors.New("domain: box length is not a multiple of the space step")
	ErrInvalidBox     = errors.New("domain: invalid box")
	ErrInvalidStep    = errors.New("domain: space step must be positive")
)

// Link is a population that crosses the border: interior cell I (halo
// indexing) moving with the unique velocity Q.
type Link struct {
	Q        int
	I        int
	Distance float64
}

type Domain struct {
	XMin, XMax float64
	Dx         float64
	N          int
	Halo       int
	BoxLabel   [2]int

	XHalo []float64
	X     []float64

	InOrOut  []int
	Distance [][]float64
	Flag     [][]int

	stencil *lattice.Stencil
}

// New creates the domain on [xmin, xmax] with the given space step.
// labels holds the left and right labels of the box.
func New(xmin, xmax, dx float64, labels [2]int, st *lattice.Stencil) (*Domain, error) {
	if dx <= 0 {
		return nil, ErrInvalidStep
	}
	if xmax <= xmin {
		return nil, fmt.Errorf("%w: xmax (%g) must exceed xmin (%g)", ErrInvalidBox, xmax, xmin)
	}

	size := (xmax - xmin) / dx
	n := math.Round(size)
	if math.Abs(size-n) > 1e-10*math.Max(1, size) {
		return nil, fmt.Errorf("%w: (%g - %g) / %g = %g", ErrBoxNotMultiple, xmax, xmin, dx, size)
	}

	d := &Domain{
		XMin:     xmin,
		XMax:     xmax,
		Dx:       dx,
		N:        int(n),
		Halo:     st.VMax,
		BoxLabel: labels,
		stencil:  st,
	}
	d.createCoords()
	d.addInit()
	return d, nil
}

func (d *Domain) createCoords() {
	total := d.N + 2*d.Halo
	start := d.XMin - d.Dx*(float64(d.Halo)-0.5)
	d.XHalo = make([]float64, total)
	for i := range d.XHalo {
		d.XHalo[i] = start + d.Dx*float64(i)
	}
	d.X = d.XHalo[d.Halo : d.Halo+d.N]
}

func (d *Domain) addInit() {
	total := d.N + 2*d.Halo
	d.InOrOut = make([]int, total)
	for i := range d.InOrOut {
		if i < d.Halo || i >= d.Halo+d.N {
			d.InOrOut[i] = ValOut
		} else {
			d.InOrOut[i] = ValIn
		}
	}

	nq := d.stencil.NumUnique()
	d.Distance = make([][]float64, nq)
	d.Flag = make([][]int, nq)
	for q := 0; q < nq; q++ {
		d.Distance[q] = make([]float64, total)
		d.Flag[q] = make([]int, total)
		for i := 0; i < total; i++ {
			d.Distance[q][i] = ValIn
			d.Flag[q][i] = ValIn
		}
	}

	for q, v := range d.stencil.UniqueVelocities() {
		switch {
		case v < 0 && d.BoxLabel[0] != LabelInterface:
			for i := 0; i < -v && i < d.N; i++ {
				idx := d.Halo + i
				d.Distance[q][idx] = (float64(i) + 0.5) / float64(-v)
				d.Flag[q][idx] = d.BoxLabel[0]
			}
		case v > 0 && d.BoxLabel[1] != LabelInterface:
			for i := 0; i < v && i < d.N; i++ {
				idx := d.Halo + d.N - 1 - i
				d.Distance[q][idx] = (float64(i) + 0.5) / float64(v)
				d.Flag[q][idx] = d.BoxLabel[1]
			}
		}
	}
}

// Stencil returns the stencil the domain was built with.
func (d *Domain) Stencil() *lattice.Stencil { return d.stencil }

// Interior returns the halo indices [start, end) of the interior cells.
func (d *Domain) Interior() (int, int) { return d.Halo, d.Halo + d.N }

// Size is the number of points including the halo.
func (d *Domain) Size() int { return len(d.XHalo) }

// Labels returns the sorted labels used on the border of the box.
func (d *Domain) Labels() []int {
	labels := []int{d.BoxLabel[0]}
	if d.BoxLabel[1] != d.BoxLabel[0] {
		labels = append(labels, d.BoxLabel[1])
	}
	sort.Ints(labels)
	return labels
}

// Links lists the populations leaving the domain through the given label.
func (d *Domain) Links(label int) []Link {
	var links []Link
	for q := range d.Flag {
		for i, f := range d.Flag[q] {
			if f == label && d.Distance[q][i] != ValIn {
				links = append(links, Link{Q: q, I: i, Distance: d.Distance[q][i]})
			}
		}
	}
	return links
}

func (d *Domain) String() string {
	var sb strings.Builder
	sb.WriteString("Domain informations\n")
	sb.WriteString("  spatial dimension: 1\n")
	sb.WriteString(fmt.Sprintf("  bounds of the box: [%g, %g]\n", d.XMin, d.XMax))
	sb.WriteString(fmt.Sprintf("  space step: dx=%10.3e\n", d.Dx))
	sb.WriteString(fmt.Sprintf("  number of points: N=%d, halo=%d\n", d.N, d.Halo))
	sb.WriteString(fmt.Sprintf("  labels: left=%d right=%d\n", d.BoxLabel[0], d.BoxLabel[1]))
	return sb.String()
}
