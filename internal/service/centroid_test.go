package service_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/service"
)

var _ = Describe("Centroid", func() {
	It("returns the vector itself for a single input", func() {
		v := []float32{0.25, -1.5, 3}
		c, err := service.Centroid([][]float32{v})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(v))
	})

	It("keeps the input dimensionality", func() {
		c, err := service.Centroid([][]float32{{1, 2, 3, 4}, {5, 6, 7, 8}, {0, 0, 0, 0}})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(HaveLen(4))
	})

	It("averages element-wise", func() {
		c, err := service.Centroid([][]float32{{1, 2}, {3, 4}})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal([]float32{2, 3}))
	})

	It("fails cleanly on an empty set", func() {
		_, err := service.Centroid(nil)
		Expect(err).To(MatchError(service.ErrEmptyCentroid))
	})

	It("rejects mixed dimensions", func() {
		_, err := service.Centroid([][]float32{{1, 2}, {1, 2, 3}})
		Expect(err).To(MatchError(service.ErrDimensionMismatch))
	})
})

var _ = Describe("ParseTitles", func() {
	It("trims whitespace and drops empty fragments", func() {
		Expect(service.ParseTitles(" Inception ,, Interstellar,")).To(Equal(service.ParseTitles("Inception, Interstellar")))
		Expect(service.ParseTitles("Inception, Interstellar")).To(Equal([]string{"Inception", "Interstellar"}))
	})

	It("returns nothing for blank input", func() {
		Expect(service.ParseTitles(" , ,  ")).To(BeEmpty())
		Expect(service.ParseTitles("")).To(BeEmpty())
	})
})

var _ = Describe("YearOrNA", func() {
	It("uses the sentinel for a missing year", func() {
		Expect(service.YearOrNA("")).To(Equal("N/A"))
		Expect(service.YearOrNA("1999")).To(Equal("1999"))
	})
})

var _ = Describe("Result", func() {
	It("renders the header followed by lines", func() {
		r := service.Result{Kind: service.KindSuccess, Header: "H", Lines: []string{"a", "b"}}
		Expect(r.String()).To(Equal("H\na\nb"))
		Expect(r.OK()).To(BeTrue())
	})

	It("renders the message for failures", func() {
		r := service.Result{Kind: service.KindNotFound, Message: "nothing"}
		Expect(r.String()).To(Equal("nothing"))
		Expect(r.OK()).To(BeFalse())
	})
})
