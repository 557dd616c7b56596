package probe

import (
	"fmt"

	"github.com/san-kum/probelab/internal/montecarlo"
)

// RunSpec is the immutable input to one probe run.
type RunSpec struct {
	Provider       string `json:"provider" yaml:"provider"`
	Model          string `json:"model" yaml:"model"`
	Prompt         string `json:"prompt" yaml:"prompt"`
	Condition      string `json:"condition" yaml:"condition"`
	Laps           int    `json:"laps" yaml:"laps"`
	Samples        int    `json:"samples" yaml:"samples"`
	EmbeddingDim   int    `json:"embedding_dim" yaml:"embedding_dim"`
	EmbeddingNgram int    `json:"embedding_ngram" yaml:"embedding_ngram"`
}

// Validate checks the spec for configuration errors. These are fatal
// and never retried.
func (s RunSpec) Validate() error {
	if s.Provider == "" {
		return fmt.Errorf("probe: provider must be set")
	}
	if s.Laps <= 0 {
		return fmt.Errorf("probe: laps must be positive, got %d", s.Laps)
	}
	if s.Samples < 1 {
		return fmt.Errorf("probe: samples must be at least 1, got %d", s.Samples)
	}
	if s.EmbeddingDim <= 0 {
		return fmt.Errorf("probe: embedding dim must be positive, got %d", s.EmbeddingDim)
	}
	if s.EmbeddingNgram <= 0 {
		return fmt.Errorf("probe: embedding ngram must be positive, got %d", s.EmbeddingNgram)
	}
	return nil
}

// LapRecord is one request/response cycle reduced to surface statistics
// and an embedding. Records are immutable once produced; their order is
// the trajectory consumed by the attractor analyzer.
type LapRecord struct {
	LapIndex         int     `json:"lap_index"`
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Condition        string  `json:"condition"`
	ResponsePreview  string  `json:"response_preview"`
	CharEntropy      float64 `json:"char_entropy"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	RepetitionRatio  float64 `json:"repetition_ratio"`
	CosineToPrev     float64 `json:"cosine_to_prev"`

	Embedding []float64 `json:"embedding"`
	ElapsedMS int64     `json:"elapsed_ms"`

	// Monte Carlo fields, populated only when spec.Samples > 1. The
	// baseline lap carries the distribution but nil divergence fields.
	MCDist      montecarlo.Distribution `json:"mc_dist,omitempty"`
	JSDivVs     *float64                `json:"js_divergence_vs_baseline,omitempty"`
	TopKOverlap *float64                `json:"topk_overlap_vs_baseline,omitempty"`
}
