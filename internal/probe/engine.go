// Package probe executes probe runs: repeated generation laps against a
// provider, each reduced to surface statistics and an embedding. The
// ordered lap records form the trajectory consumed by the attractor
// analyzer.
package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/san-kum/probelab/internal/embedding"
	"github.com/san-kum/probelab/internal/montecarlo"
	"github.com/san-kum/probelab/internal/provider"
	"github.com/san-kum/probelab/internal/telemetry"
	"github.com/san-kum/probelab/internal/textmetrics"
)

const (
	previewLimit = 160

	// Top-k cutoff for baseline overlap comparisons.
	overlapK = 5
)

// LapEvent is the telemetry event emitted after each lap completes.
const LapEvent = "probe.lap"

type Engine struct {
	registry *provider.Registry
	sink     telemetry.Sink
}

// New creates an engine over a provider registry. sink may be nil; lap
// events are then discarded.
func New(registry *provider.Registry, sink telemetry.Sink) *Engine {
	return &Engine{registry: registry, sink: sink}
}

// accumulator carries state between laps of a single run. Each Run call
// owns its own accumulator; nothing crosses run boundaries.
type accumulator struct {
	prevEmbedding []float64
	baseline      montecarlo.Distribution
}

// Run executes spec.Laps sequential laps and returns the records in lap
// order. A provider failure is fatal to the whole run.
func (e *Engine) Run(ctx context.Context, spec RunSpec) ([]LapRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	prov, err := e.registry.Get(spec.Provider)
	if err != nil {
		return nil, err
	}

	records := make([]LapRecord, 0, spec.Laps)
	var acc accumulator

	for lap := 0; lap < spec.Laps; lap++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := e.runLap(ctx, prov, spec, lap, &acc)
		if err != nil {
			return nil, &LapError{Lap: lap, Wrapped: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

func (e *Engine) runLap(ctx context.Context, prov provider.Provider, spec RunSpec, lap int, acc *accumulator) (LapRecord, error) {
	start := time.Now()

	text, err := prov.Generate(ctx, spec.Prompt, provider.GenSpec{Model: spec.Model})
	if err != nil {
		return LapRecord{}, err
	}

	vec, _ := embedding.HashEmbedding(text, spec.EmbeddingDim, spec.EmbeddingNgram)

	cosPrev := 0.0
	if acc.prevEmbedding != nil {
		cosPrev = embedding.Cosine(vec, acc.prevEmbedding)
	}
	acc.prevEmbedding = vec

	rec := LapRecord{
		LapIndex:         lap,
		Provider:         spec.Provider,
		Model:            spec.Model,
		Condition:        spec.Condition,
		ResponsePreview:  preview(text),
		CharEntropy:      textmetrics.CharEntropy(text),
		LexicalDiversity: textmetrics.LexicalDiversity(text),
		RepetitionRatio:  textmetrics.RepetitionRatio(text),
		CosineToPrev:     cosPrev,
		Embedding:        vec,
		ElapsedMS:        time.Since(start).Milliseconds(),
	}

	if spec.Samples > 1 {
		if err := e.sampleLap(ctx, prov, spec, &rec, acc); err != nil {
			return LapRecord{}, err
		}
	}

	telemetry.Emit(e.sink, LapEvent,
		map[string]float64{
			"char_entropy":      rec.CharEntropy,
			"lexical_diversity": rec.LexicalDiversity,
			"repetition_ratio":  rec.RepetitionRatio,
			"cosine_to_prev":    rec.CosineToPrev,
			"elapsed_ms":        float64(rec.ElapsedMS),
		},
		map[string]string{
			"lap_index": strconv.Itoa(lap),
			"provider":  spec.Provider,
			"model":     spec.Model,
			"condition": spec.Condition,
		})

	return rec, nil
}

// sampleLap draws a Monte Carlo distribution for this lap. The first
// sampled distribution becomes the run's baseline; later laps compare
// against that fixed baseline.
func (e *Engine) sampleLap(ctx context.Context, prov provider.Provider, spec RunSpec, rec *LapRecord, acc *accumulator) error {
	gen := func(ctx context.Context, prompt string) (string, error) {
		return prov.Generate(ctx, prompt, provider.GenSpec{Model: spec.Model})
	}

	dist, err := montecarlo.Sample(ctx, gen, spec.Prompt, spec.Samples)
	if err != nil {
		return err
	}
	rec.MCDist = dist

	if acc.baseline == nil {
		acc.baseline = dist
		return nil
	}

	js := montecarlo.JSDivergence(dist, acc.baseline)
	overlap := montecarlo.TopKOverlap(dist, acc.baseline, overlapK)
	rec.JSDivVs = &js
	rec.TopKOverlap = &overlap
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit])
}
