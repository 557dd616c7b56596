package attractor

import "math"

// fitLine fits y = slope*x + intercept by ordinary least squares and
// returns the coefficient of determination. Fewer than two points, or a
// flat y, yield zeros.
func fitLine(xs, ys []float64) (slope, intercept, r2 float64) {
	n := len(xs)
	if n < 2 || len(ys) < n {
		return 0, 0, 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var covXY, varX float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		covXY += dx * (ys[i] - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0, 0, 0
	}

	slope = covXY / varX
	intercept = meanY - slope*meanX

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	if ssTot == 0 {
		return slope, intercept, 0
	}
	return slope, intercept, 1 - ssRes/ssTot
}

// euclidean returns the Euclidean distance between a and b.
func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
