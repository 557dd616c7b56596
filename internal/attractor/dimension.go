package attractor

import "math"

const (
	numRadii    = 20
	corrEpsilon = 1e-12
)

// CorrelationDimension estimates the Grassberger-Procaccia correlation
// dimension of a delay vector sequence: the slope of log C(r) versus
// log r over 20 logarithmically spaced radii, where C(r) is the
// fraction of pairwise distances below r. No pairs yields 0.
func CorrelationDimension(delays [][]float64) float64 {
	dists := pairwiseDistances(delays)
	if len(dists) == 0 {
		return 0
	}

	rMin, rMax := math.Inf(1), 0.0
	for _, d := range dists {
		if d > 0 {
			if d < rMin {
				rMin = d
			}
			if d > rMax {
				rMax = d
			}
		}
	}
	// All distances zero: fall back to a fixed range instead of log(0).
	if rMax == 0 || math.IsInf(rMin, 1) {
		rMin, rMax = 1e-6, 1.0
	}

	logXs := make([]float64, 0, numRadii)
	logYs := make([]float64, 0, numRadii)

	logMin, logMax := math.Log(rMin), math.Log(rMax)
	for i := 0; i < numRadii; i++ {
		frac := float64(i) / float64(numRadii-1)
		r := math.Exp(logMin + frac*(logMax-logMin))

		count := 0
		for _, d := range dists {
			if d < r {
				count++
			}
		}
		c := float64(count) / float64(len(dists))
		if c <= 0 {
			c = corrEpsilon
		}
		if c >= 1 {
			c = 1 - corrEpsilon
		}

		logXs = append(logXs, math.Log(r))
		logYs = append(logYs, math.Log(c))
	}

	slope, _, _ := fitLine(logXs, logYs)
	return slope
}

// pairwiseDistances computes all L*(L-1)/2 distances among delay rows.
// Rows are chunked across workers; each chunk writes a disjoint slice
// region, so no synchronization is needed beyond the final join.
func pairwiseDistances(delays [][]float64) []float64 {
	n := len(delays)
	if n < 2 {
		return nil
	}

	// offsets[i] is where row i's distances begin in the flat result.
	offsets := make([]int, n)
	total := 0
	for i := 0; i < n; i++ {
		offsets[i] = total
		total += n - i - 1
	}

	dists := make([]float64, total)
	parallelFor(n, 32, func(start, end int) {
		for i := start; i < end; i++ {
			base := offsets[i]
			for j := i + 1; j < n; j++ {
				dists[base+j-i-1] = euclidean(delays[i], delays[j])
			}
		}
	})
	return dists
}
