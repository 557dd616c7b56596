// Package service wires the attractor analyzer to persistence: it
// recomputes a run's summary from its stored trajectory and upserts the
// result, keeping at most one summary per run.
package service

import (
	"github.com/san-kum/probelab/internal/attractor"
)

// EmbeddingSource yields a run's ordered embeddings.
type EmbeddingSource interface {
	LoadEmbeddings(runID string) ([][]float64, error)
}

// SummarySink persists summaries with upsert semantics.
type SummarySink interface {
	UpsertSummary(sum attractor.Summary) error
}

// AttractorService recomputes and stores attractor summaries. It is
// idempotent: recomputing the same unchanged run produces the same
// stored summary.
type AttractorService struct {
	source EmbeddingSource
	sink   SummarySink
	opts   attractor.Options
}

func New(source EmbeddingSource, sink SummarySink, opts attractor.Options) *AttractorService {
	return &AttractorService{source: source, sink: sink, opts: opts}
}

// Recompute loads the run's trajectory, summarizes it and upserts the
// summary. A missing run surfaces the store's not-found error.
func (s *AttractorService) Recompute(runID string) (attractor.Summary, error) {
	embeddings, err := s.source.LoadEmbeddings(runID)
	if err != nil {
		return attractor.Summary{}, err
	}

	sum, err := attractor.Summarize(embeddings, s.opts)
	if err != nil {
		return attractor.Summary{}, err
	}
	sum.RunID = runID

	if err := s.sink.UpsertSummary(sum); err != nil {
		return attractor.Summary{}, err
	}
	return sum, nil
}
