// Package embedding maps text to fixed-dimension vectors via hashed
// n-gram bucketing.
//
// The embedding is locality-insensitive: n-grams land in buckets by
// hashing, so collisions are expected. The useful properties are
// determinism (same text and parameters always give the same vector)
// and unit L2 norm, which makes cosine comparisons meaningful.
package embedding

import (
	"crypto/md5"
	"math"
	"math/big"
	"strings"
)

const normEpsilon = 1e-12

// HashEmbedding converts text to an L2-normalized dim-vector by
// hashing every n-gram into a bucket. It returns the normalized vector
// and the pre-normalization norm, which tracks text length.
func HashEmbedding(text string, dim, ngram int) ([]float64, float64) {
	vec := make([]float64, dim)

	runes := []rune(text)
	if len(runes) < ngram {
		runes = append(runes, []rune(strings.Repeat(" ", ngram-len(runes)))...)
	}

	var idx big.Int
	mod := big.NewInt(int64(dim))
	for i := 0; i+ngram <= len(runes); i++ {
		sum := md5.Sum([]byte(string(runes[i : i+ngram])))
		idx.SetBytes(sum[:])
		bucket := idx.Mod(&idx, mod).Int64()
		vec[bucket]++
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	div := norm + normEpsilon
	for i := range vec {
		vec[i] /= div
	}
	return vec, norm
}

// Cosine returns the cosine similarity of a and b, guarded so that
// zero vectors yield 0 rather than NaN.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	dot, na, nb := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	return dot / (math.Sqrt(na) + normEpsilon) / (math.Sqrt(nb) + normEpsilon)
}
