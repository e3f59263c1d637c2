// Package lattice describes the discrete velocity sets of 1D lattice-Boltzmann schemes.
//
// Velocities are referenced by number. Number 0 is the rest velocity and
// the following numbers alternate between positive and negative speeds:
//
//	number:   0  1  2  3  4  5  6
//	velocity: 0 +1 -1 +2 -2 +3 -3
//
// A D1Q2 scheme therefore uses the numbers [1, 2] and a D1Q3 scheme [0, 1, 2].
package lattice

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoSchemes         = errors.New("lattice: no elementary scheme given")
	ErrNoVelocities      = errors.New("lattice: scheme has no velocities")
	ErrDuplicateVelocity = errors.New("lattice: duplicate velocity in scheme")
	ErrNegativeNumber    = errors.New("lattice: velocity number must be non-negative")
)

// VelocityFromNumber returns the lattice velocity associated with a velocity number.
func VelocityFromNumber(k int) int {
	if k%2 == 1 {
		return (k + 1) / 2
	}
	return -k / 2
}

// NumberFromVelocity is the inverse of VelocityFromNumber.
func NumberFromVelocity(v int) int {
	switch {
	case v > 0:
		return 2*v - 1
	case v < 0:
		return -2 * v
	default:
		return 0
	}
}

// Stencil gathers the velocities of every elementary scheme.
type Stencil struct {
	schemes [][]int
	Unique  []int
	VMax    int
	index   map[int]int
}

func NewStencil(schemes [][]int) (*Stencil, error) {
	if len(schemes) == 0 {
		return nil, ErrNoSchemes
	}

	st := &Stencil{
		schemes: make([][]int, len(schemes)),
		index:   make(map[int]int),
	}

	seen := make(map[int]bool)
	for i, numbers := range schemes {
		if len(numbers) == 0 {
			return nil, fmt.Errorf("scheme %d: %w", i, ErrNoVelocities)
		}
		local := make(map[int]bool, len(numbers))
		for _, k := range numbers {
			if k < 0 {
				return nil, fmt.Errorf("scheme %d: %w (got %d)", i, ErrNegativeNumber, k)
			}
			if local[k] {
				return nil, fmt.Errorf("scheme %d: %w (number %d)", i, ErrDuplicateVelocity, k)
			}
			local[k] = true
			if !seen[k] {
				seen[k] = true
				st.Unique = append(st.Unique, k)
			}
			if v := abs(VelocityFromNumber(k)); v > st.VMax {
				st.VMax = v
			}
		}
		st.schemes[i] = append([]int(nil), numbers...)
	}

	sort.Ints(st.Unique)
	for i, k := range st.Unique {
		st.index[k] = i
	}
	return st, nil
}

func (s *Stencil) NumSchemes() int { return len(s.schemes) }
func (s *Stencil) NumUnique() int  { return len(s.Unique) }

// NumTotal counts the distributions over all schemes. Velocities shared by
// two schemes are counted twice.
func (s *Stencil) NumTotal() int {
	n := 0
	for _, sc := range s.schemes {
		n += len(sc)
	}
	return n
}

// Scheme returns the velocity numbers of scheme i.
func (s *Stencil) Scheme(i int) []int { return s.schemes[i] }

// SchemeVelocities returns the velocities of scheme i.
func (s *Stencil) SchemeVelocities(i int) []int {
	vs := make([]int, len(s.schemes[i]))
	for j, k := range s.schemes[i] {
		vs[j] = VelocityFromNumber(k)
	}
	return vs
}

func (s *Stencil) UniqueVelocities() []int {
	vs := make([]int, len(s.Unique))
	for i, k := range s.Unique {
		vs[i] = VelocityFromNumber(k)
	}
	return vs
}

// UniqueIndex returns the position of velocity number k in Unique, or -1.
func (s *Stencil) UniqueIndex(k int) int {
	if i, ok := s.index[k]; ok {
		return i
	}
	return -1
}

// Opposite returns the number of the velocity pointing the other way.
func Opposite(k int) int {
	return NumberFromVelocity(-VelocityFromNumber(k))
}

func (s *Stencil) String() string {
	out := fmt.Sprintf("Stencil: D1Q%d, vmax=%d\n", s.NumUnique(), s.VMax)
	for i := range s.schemes {
		out += fmt.Sprintf("  scheme %d: velocities %v\n", i, s.SchemeVelocities(i))
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
