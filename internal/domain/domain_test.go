package domain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lbmsim/internal/domain"
	"github.com/san-kum/lbmsim/internal/lattice"
)

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func filledInt(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ = Describe("Domain", func() {
	var d1q3 *lattice.Stencil

	BeforeEach(func() {
		var err error
		d1q3, err = lattice.NewStencil([][]int{{0, 1, 2}})
		Expect(err).NotTo(HaveOccurred())
	})

	It("builds the coordinates with one halo point on each side", func() {
		dom, err := domain.New(0, 1, 0.25, [2]int{0, 1}, d1q3)
		Expect(err).NotTo(HaveOccurred())

		Expect(dom.N).To(Equal(4))
		Expect(dom.Dx).To(Equal(0.25))
		Expect(dom.Halo).To(Equal(1))
		Expect(dom.XHalo).To(HaveLen(6))
		Expect(dom.XHalo[0]).To(BeNumerically("~", -0.125, 1e-14))
		Expect(dom.XHalo[5]).To(BeNumerically("~", 1.125, 1e-14))
		Expect(dom.X).To(HaveLen(4))
		Expect(dom.X[0]).To(BeNumerically("~", 0.125, 1e-14))
	})

	It("computes distances and flags for a single scheme", func() {
		dom, err := domain.New(0, 1, 0.25, [2]int{0, 0}, d1q3)
		Expect(err).NotTo(HaveOccurred())

		inOrOut := filledInt(6, domain.ValIn)
		inOrOut[0], inOrOut[5] = domain.ValOut, domain.ValOut
		Expect(dom.InOrOut).To(Equal(inOrOut))

		want := [][]float64{filled(6, domain.ValIn), filled(6, domain.ValIn), filled(6, domain.ValIn)}
		want[1][4] = 0.5
		want[2][1] = 0.5
		Expect(dom.Distance).To(Equal(want))

		flags := [][]int{filledInt(6, domain.ValIn), filledInt(6, domain.ValIn), filledInt(6, domain.ValIn)}
		flags[1][4] = 0
		flags[2][1] = 0
		Expect(dom.Flag).To(Equal(flags))
	})

	It("labels each end for two schemes", func() {
		st, err := lattice.NewStencil([][]int{{0, 1, 2}, {0, 1, 2, 3, 4}})
		Expect(err).NotTo(HaveOccurred())

		left, right := 1, 2
		dom, err := domain.New(0, 1, 0.25, [2]int{left, right}, st)
		Expect(err).NotTo(HaveOccurred())
		Expect(dom.Halo).To(Equal(2))
		Expect(dom.Size()).To(Equal(8))

		Expect(dom.Distance[1][5]).To(Equal(0.5))
		Expect(dom.Distance[2][2]).To(Equal(0.5))
		Expect(dom.Distance[3][5]).To(Equal(0.25))
		Expect(dom.Distance[3][4]).To(Equal(0.75))
		Expect(dom.Distance[4][2]).To(Equal(0.25))
		Expect(dom.Distance[4][3]).To(Equal(0.75))

		Expect(dom.Flag[2][2]).To(Equal(left))
		Expect(dom.Flag[4][2]).To(Equal(left))
		Expect(dom.Flag[4][3]).To(Equal(left))
		Expect(dom.Flag[1][5]).To(Equal(right))
		Expect(dom.Flag[3][5]).To(Equal(right))
		Expect(dom.Flag[3][4]).To(Equal(right))
		Expect(dom.Flag[0]).To(Equal(filledInt(8, domain.ValIn)))

		Expect(dom.Labels()).To(Equal([]int{1, 2}))
		Expect(dom.Links(left)).To(HaveLen(3))
		Expect(dom.Links(right)).To(HaveLen(3))
	})

	It("skips interface labels", func() {
		dom, err := domain.New(0, 1, 0.25, [2]int{domain.LabelInterface, 0}, d1q3)
		Expect(err).NotTo(HaveOccurred())
		Expect(dom.Links(domain.LabelInterface)).To(BeEmpty())
		Expect(dom.Links(0)).To(HaveLen(1))
	})

	It("rejects a box that is not a multiple of the space step", func() {
		_, err := domain.New(0, 1, 0.3, [2]int{0, 0}, d1q3)
		Expect(err).To(MatchError(domain.ErrBoxNotMultiple))

		_, err = domain.New(1, 0, 0.25, [2]int{0, 0}, d1q3)
		Expect(err).To(MatchError(domain.ErrInvalidBox))

		_, err = domain.New(0, 1, 0, [2]int{0, 0}, d1q3)
		Expect(err).To(MatchError(domain.ErrInvalidStep))
	})
})
