// Package montecarlo estimates the first-token output distribution of a
// stochastic generator by repeated sampling, and provides divergence
// and overlap metrics between two such distributions.
package montecarlo

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

const klEpsilon = 1e-12

// EmptyToken is the sentinel bucket for samples with no parseable first word.
const EmptyToken = "<empty>"

// Generator produces one stochastic sample for a prompt.
type Generator func(ctx context.Context, prompt string) (string, error)

// Distribution maps tokens to empirical probabilities summing to 1.
type Distribution map[string]float64

// Sample draws samples calls against gen and returns the
// empirical frequency distribution of lower-cased first words. The
// sample calls are independent and run concurrently; counting is
// commutative so the result does not depend on completion order.
// Any failed sample fails the whole estimate.
func Sample(ctx context.Context, gen Generator, prompt string, samples int) (Distribution, error) {
	if samples < 1 {
		samples = 1
	}

	outputs := make([]string, samples)
	errs := make([]error, samples)

	var wg sync.WaitGroup
	for i := 0; i < samples; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			outputs[idx], errs[idx] = gen(ctx, prompt)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[string]int, samples)
	for _, out := range outputs {
		counts[firstToken(out)]++
	}

	dist := make(Distribution, len(counts))
	for tok, c := range counts {
		dist[tok] = float64(c) / float64(samples)
	}
	return dist, nil
}

// firstToken extracts the lower-cased first whitespace token, stripping
// leading quotes and apostrophes. Unparseable output maps to EmptyToken.
func firstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return EmptyToken
	}
	tok := strings.ToLower(fields[0])
	tok = strings.TrimLeft(tok, "\"'`‘’“”")
	if tok == "" {
		return EmptyToken
	}
	return tok
}

// JSDivergence computes the Jensen-Shannon divergence between p and q
// over the union of their supports. Missing keys count as probability 0.
func JSDivergence(p, q Distribution) float64 {
	keys := make(map[string]struct{}, len(p)+len(q))
	for k := range p {
		keys[k] = struct{}{}
	}
	for k := range q {
		keys[k] = struct{}{}
	}

	klP, klQ := 0.0, 0.0
	for k := range keys {
		pv, qv := p[k], q[k]
		m := (pv + qv) / 2

		if pv > 0 {
			klP += pv * math.Log((pv+klEpsilon)/(m+klEpsilon))
		}
		if qv > 0 {
			klQ += qv * math.Log((qv+klEpsilon)/(m+klEpsilon))
		}
	}
	return (klP + klQ) / 2
}

// TopKOverlap returns the Jaccard overlap of the top-k most probable
// tokens of p and q. Two empty distributions overlap 0, not NaN.
func TopKOverlap(p, q Distribution, k int) float64 {
	top := func(d Distribution) map[string]struct{} {
		type entry struct {
			tok  string
			prob float64
		}
		entries := make([]entry, 0, len(d))
		for tok, prob := range d {
			entries = append(entries, entry{tok, prob})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].prob != entries[j].prob {
				return entries[i].prob > entries[j].prob
			}
			return entries[i].tok < entries[j].tok
		})
		if len(entries) > k {
			entries = entries[:k]
		}
		set := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			set[e.tok] = struct{}{}
		}
		return set
	}

	topP, topQ := top(p), top(q)

	inter := 0
	for tok := range topP {
		if _, ok := topQ[tok]; ok {
			inter++
		}
	}
	union := len(topP) + len(topQ) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}
