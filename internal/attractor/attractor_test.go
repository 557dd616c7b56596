package attractor_test

import (
	"math"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/probelab/internal/attractor"
)

// circleEmbeddings samples n noisy 4-dimensional points around a 2D
// circle, a known low-dimensional attractor.
func circleEmbeddings(n int, noise float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float64, n)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[i] = []float64{
			math.Cos(theta) + noise*rng.NormFloat64(),
			math.Sin(theta) + noise*rng.NormFloat64(),
			math.Cos(theta) + noise*rng.NormFloat64(),
			math.Sin(theta) + noise*rng.NormFloat64(),
		}
	}
	return out
}

var _ = Describe("DelayEmbed", func() {
	It("produces T-(m-1)*tau rows of concatenated vectors", func() {
		series := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}
		delays := attractor.DelayEmbed(series, 3, 1)

		Expect(delays).To(HaveLen(3))
		Expect(delays[0]).To(Equal([]float64{1, 2, 3, 4, 5, 6}))
		Expect(delays[2]).To(Equal([]float64{5, 6, 7, 8, 9, 10}))
	})

	It("respects the delay step", func() {
		series := [][]float64{{1}, {2}, {3}, {4}, {5}}
		delays := attractor.DelayEmbed(series, 2, 2)

		Expect(delays).To(HaveLen(3))
		Expect(delays[0]).To(Equal([]float64{1, 3}))
		Expect(delays[1]).To(Equal([]float64{2, 4}))
	})

	It("returns an empty sequence when too few vectors exist", func() {
		series := [][]float64{{1}, {2}}
		Expect(attractor.DelayEmbed(series, 3, 1)).To(BeEmpty())
		Expect(attractor.DelayEmbed(nil, 3, 1)).To(BeEmpty())
	})
})

var _ = Describe("CorrelationDimension", func() {
	It("returns 0 with no pairwise distances", func() {
		Expect(attractor.CorrelationDimension(nil)).To(BeZero())
		Expect(attractor.CorrelationDimension([][]float64{{1, 2}})).To(BeZero())
	})

	It("handles identical points without log errors", func() {
		delays := [][]float64{{1, 1}, {1, 1}, {1, 1}}
		dim := attractor.CorrelationDimension(delays)
		Expect(math.IsNaN(dim)).To(BeFalse())
		Expect(math.IsInf(dim, 0)).To(BeFalse())
	})
})

var _ = Describe("SimpleLyapunov", func() {
	It("returns 0 on degenerate input", func() {
		Expect(attractor.SimpleLyapunov(nil)).To(BeZero())
		Expect(attractor.SimpleLyapunov([][]float64{{1}})).To(BeZero())
	})
})

var _ = Describe("RosensteinLyapunov", func() {
	It("returns zero fields when fewer than 2 delay rows exist", func() {
		slope, r2, window := attractor.RosensteinLyapunov(nil)
		Expect(slope).To(BeZero())
		Expect(r2).To(BeZero())
		Expect(window.String()).To(Equal("0..0"))
	})

	It("anchors every candidate window at horizon 1", func() {
		embeddings := circleEmbeddings(60, 0.02, 7)
		delays := attractor.DelayEmbed(embeddings, 3, 1)

		_, _, window := attractor.RosensteinLyapunov(delays)
		Expect(window.Start).To(Equal(1))
		Expect(window.End).To(BeNumerically(">=", 6))
	})
})

var _ = Describe("Summarize", func() {
	It("rejects invalid options", func() {
		_, err := attractor.Summarize(nil, attractor.Options{M: 0, Tau: 1, MinPoints: 30})
		Expect(err).To(HaveOccurred())

		_, err = attractor.Summarize(nil, attractor.Options{M: 3, Tau: 0, MinPoints: 30})
		Expect(err).To(HaveOccurred())
	})

	It("degrades to an unreliable zero summary on empty input", func() {
		sum, err := attractor.Summarize(nil, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(sum.Reliable).To(BeFalse())
		Expect(sum.Points).To(BeZero())
		Expect(sum.DelayRows).To(BeZero())
		Expect(sum.CorrDim).To(BeZero())
		Expect(sum.Lyap).To(BeZero())
		Expect(sum.LyapRosenstein).To(BeZero())
		Expect(sum.LyapCanonical).To(BeZero())
		Expect(sum.Note).To(ContainSubstring("insufficient data"))
	})

	It("stays defined for a single point", func() {
		sum, err := attractor.Summarize([][]float64{{0.5, 0.5}}, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Points).To(Equal(1))
		Expect(sum.Reliable).To(BeFalse())
	})

	It("marks summaries reliable above the point and row thresholds", func() {
		embeddings := circleEmbeddings(50, 0.01, 3)
		sum, err := attractor.Summarize(embeddings, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(sum.Points).To(Equal(50))
		Expect(sum.DelayRows).To(Equal(48))
		Expect(sum.Reliable).To(BeTrue())
		Expect(sum.Note).To(ContainSubstring("heuristics only"))
	})

	It("recovers a plausible dimension for a noisy circle", func() {
		embeddings := circleEmbeddings(50, 0.01, 11)
		sum, err := attractor.Summarize(embeddings, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(sum.Reliable).To(BeTrue())
		Expect(sum.CorrDim).To(BeNumerically(">=", 1.0))
		Expect(sum.CorrDim).To(BeNumerically("<=", 2.5))
	})

	It("selects the canonical estimate by fit quality", func() {
		embeddings := circleEmbeddings(50, 0.01, 5)
		sum, err := attractor.Summarize(embeddings, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		if sum.LyapR2 >= 0.6 {
			Expect(sum.LyapCanonical).To(Equal(sum.LyapRosenstein))
		} else {
			Expect(sum.LyapCanonical).To(Equal(sum.Lyap))
		}
	})

	It("serializes the fit window as start..end", func() {
		embeddings := circleEmbeddings(50, 0.01, 9)
		sum, err := attractor.Summarize(embeddings, attractor.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		parts := strings.Split(sum.LyapWindow, "..")
		Expect(parts).To(HaveLen(2))
	})
})
