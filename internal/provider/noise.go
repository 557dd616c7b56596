package provider

import (
	"context"
	"math/rand"
	"strings"
	"sync"
)

// Noise emits pseudo-random token sequences from a small vocabulary.
// It lets the probe and analysis pipeline run without any backend.
type Noise struct {
	name  string
	vocab []string
	mu    sync.Mutex
	rng   *rand.Rand
}

var defaultVocab = []string{
	"drift", "orbit", "fold", "mirror", "signal", "echo", "lattice",
	"pulse", "vector", "spiral", "phase", "anchor", "ember", "tide",
}

// NewNoise creates a seeded noise provider. The same seed yields the
// same sample stream, which keeps analysis runs repeatable.
func NewNoise(name string, seed int64) *Noise {
	if name == "" {
		name = "noise"
	}
	return &Noise{
		name:  name,
		vocab: defaultVocab,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (n *Noise) Name() string { return n.name }

func (n *Noise) Generate(ctx context.Context, prompt string, spec GenSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	length := 8 + n.rng.Intn(24)
	words := make([]string, length)
	for i := range words {
		words[i] = n.vocab[n.rng.Intn(len(n.vocab))]
	}
	return strings.Join(words, " "), nil
}
