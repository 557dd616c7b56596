package attractor

import (
	"fmt"
	"math"
)

const (
	lyapEpsilon = 1e-9

	// maxHorizon caps the Rosenstein divergence curve length.
	maxHorizon = 25

	// minWindow is the smallest fit window scanned for the Rosenstein
	// slope; shorter windows overfit the curve.
	minWindow = 6
)

// Window is an inclusive horizon range of the Rosenstein fit.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String serializes the window as "start..end".
func (w Window) String() string {
	return fmt.Sprintf("%d..%d", w.Start, w.End)
}

// nearestNeighbors returns, for each delay row, the index of its
// closest other row. Fewer than two rows yields nil.
func nearestNeighbors(delays [][]float64) []int {
	n := len(delays)
	if n < 2 {
		return nil
	}

	neighbors := make([]int, n)
	parallelFor(n, 16, func(start, end int) {
		for t := start; t < end; t++ {
			best := -1
			bestDist := math.Inf(1)
			for j := 0; j < n; j++ {
				if j == t {
					continue
				}
				d := euclidean(delays[t], delays[j])
				if d < bestDist {
					bestDist = d
					best = j
				}
			}
			neighbors[t] = best
		}
	})
	return neighbors
}

// SimpleLyapunov estimates the largest Lyapunov exponent as the mean
// one-step log-divergence between each delay row and its nearest
// neighbor. Empty or single-row input yields 0.
func SimpleLyapunov(delays [][]float64) float64 {
	neighbors := nearestNeighbors(delays)
	if neighbors == nil {
		return 0
	}

	n := len(delays)
	sum := 0.0
	count := 0
	for t := 0; t < n; t++ {
		j := neighbors[t]
		if t+1 >= n || j+1 >= n {
			continue
		}
		d0 := euclidean(delays[t], delays[j])
		d1 := euclidean(delays[t+1], delays[j+1])
		sum += math.Log((d1 + lyapEpsilon) / (d0 + lyapEpsilon))
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// DivergenceCurve computes the mean nearest-neighbor log-divergence at
// each horizon h = 1..min(maxHorizon, L-2). Entry h-1 holds horizon h.
func DivergenceCurve(delays [][]float64) []float64 {
	n := len(delays)
	maxH := n - 2
	if maxH > maxHorizon {
		maxH = maxHorizon
	}
	if maxH < 1 {
		return nil
	}

	neighbors := nearestNeighbors(delays)
	if neighbors == nil {
		return nil
	}

	curve := make([]float64, 0, maxH)
	for h := 1; h <= maxH; h++ {
		sum := 0.0
		count := 0
		for t := 0; t < n; t++ {
			j := neighbors[t]
			if t+h >= n || j+h >= n {
				continue
			}
			d0 := euclidean(delays[t], delays[j])
			dh := euclidean(delays[t+h], delays[j+h])
			sum += math.Log((dh + lyapEpsilon) / (d0 + lyapEpsilon))
			count++
		}
		if count == 0 {
			curve = append(curve, 0)
			continue
		}
		curve = append(curve, sum/float64(count))
	}
	return curve
}

// RosensteinLyapunov fits the divergence curve over candidate windows
// [1, w] for w = minWindow..maxH and keeps the fit with the highest R².
// The chosen slope estimates the largest Lyapunov exponent.
//
// Only windows anchored at horizon 1 are scanned. This is a deliberate
// heuristic restriction, not an exhaustive scaling-region search.
func RosensteinLyapunov(delays [][]float64) (slope, r2 float64, window Window) {
	curve := DivergenceCurve(delays)
	if len(curve) == 0 {
		return 0, 0, Window{}
	}

	maxH := len(curve)
	xs := make([]float64, maxH)
	for i := range xs {
		xs[i] = float64(i + 1)
	}

	bestR2 := math.Inf(-1)
	found := false
	for w := minWindow; w <= maxH; w++ {
		s, _, r := fitLine(xs[:w], curve[:w])
		if r > bestR2 {
			bestR2 = r
			slope = s
			window = Window{Start: 1, End: w}
			found = true
		}
	}
	if !found {
		return 0, 0, Window{}
	}
	return slope, bestR2, window
}
