// Package textmetrics provides surface statistics over a single text sample.
//
// All functions are total: every input, including the empty string,
// maps to a defined value. Degenerate inputs yield 0 rather than an error.
package textmetrics

import (
	"math"
	"strings"
)

const logEpsilon = 1e-12

// CharEntropy computes the Shannon entropy (natural log) of the
// character frequency distribution of text. Empty text yields 0.
func CharEntropy(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}

	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}

	n := float64(len(runes))
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / n
		entropy -= p * math.Log(p+logEpsilon)
	}
	return entropy
}

// LexicalDiversity returns the ratio of unique whitespace-separated
// tokens to total tokens. Empty text yields 0.
func LexicalDiversity(text string) float64 {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}
	return float64(len(seen)) / float64(len(tokens))
}

// RepetitionRatio returns the fraction of adjacent token pairs that are
// identical. Fewer than two tokens yields 0.
func RepetitionRatio(text string) float64 {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return 0
	}

	repeats := 0
	for i := 1; i < len(tokens); i++ {
		if tokens[i] == tokens[i-1] {
			repeats++
		}
	}
	return float64(repeats) / float64(len(tokens)-1)
}
