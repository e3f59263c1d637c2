package lattice_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lbmsim/internal/lattice"
)

var _ = Describe("velocity numbering", func() {
	DescribeTable("maps numbers to velocities",
		func(k, v int) {
			Expect(lattice.VelocityFromNumber(k)).To(Equal(v))
			Expect(lattice.NumberFromVelocity(v)).To(Equal(k))
		},
		Entry("rest", 0, 0),
		Entry("first right", 1, 1),
		Entry("first left", 2, -1),
		Entry("second right", 3, 2),
		Entry("second left", 4, -2),
		Entry("third left", 6, -3),
	)

	It("finds opposite velocities", func() {
		Expect(lattice.Opposite(1)).To(Equal(2))
		Expect(lattice.Opposite(4)).To(Equal(3))
		Expect(lattice.Opposite(0)).To(Equal(0))
	})
})

var _ = Describe("Stencil", func() {
	It("builds a D1Q2 stencil", func() {
		st, err := lattice.NewStencil([][]int{{1, 2}})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.VMax).To(Equal(1))
		Expect(st.NumUnique()).To(Equal(2))
		Expect(st.UniqueVelocities()).To(Equal([]int{1, -1}))
	})

	It("merges the velocities of coupled schemes", func() {
		st, err := lattice.NewStencil([][]int{{1, 2}, {0, 1, 2, 3, 4}})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Unique).To(Equal([]int{0, 1, 2, 3, 4}))
		Expect(st.NumTotal()).To(Equal(7))
		Expect(st.VMax).To(Equal(2))
		Expect(st.UniqueIndex(3)).To(Equal(3))
		Expect(st.UniqueIndex(7)).To(Equal(-1))
		Expect(st.SchemeVelocities(1)).To(Equal([]int{0, 1, -1, 2, -2}))
	})

	It("rejects invalid schemes", func() {
		_, err := lattice.NewStencil(nil)
		Expect(err).To(MatchError(lattice.ErrNoSchemes))

		_, err = lattice.NewStencil([][]int{{}})
		Expect(err).To(MatchError(lattice.ErrNoVelocities))

		_, err = lattice.NewStencil([][]int{{1, 1}})
		Expect(err).To(MatchError(lattice.ErrDuplicateVelocity))

		_, err = lattice.NewStencil([][]int{{-1}})
		Expect(err).To(MatchError(lattice.ErrNegativeNumber))
	})
})
