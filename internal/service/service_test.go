package service

import (
	"database/sql"
	"errors"
	"math"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/san-kum/probelab/internal/attractor"
	"github.com/san-kum/probelab/internal/embedding"
	"github.com/san-kum/probelab/internal/probe"
	"github.com/san-kum/probelab/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := store.New(db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func storedRun(t *testing.T, s *store.Store, laps int) string {
	t.Helper()

	records := make([]probe.LapRecord, laps)
	for i := range records {
		theta := 2 * math.Pi * float64(i) / float64(laps)
		records[i] = probe.LapRecord{
			LapIndex:  i,
			Embedding: []float64{math.Cos(theta), math.Sin(theta), math.Cos(theta), math.Sin(theta)},
		}
	}

	spec := probe.RunSpec{
		Provider: "script", Model: "m", Prompt: "p", Condition: "c",
		Laps: laps, Samples: 1, EmbeddingDim: 4, EmbeddingNgram: 3,
	}
	runID, err := s.SaveRun(spec, records)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	return runID
}

func TestRecomputeUpserts(t *testing.T) {
	s := newTestStore(t)
	runID := storedRun(t, s, 50)

	svc := New(s, s, attractor.DefaultOptions())

	sum, err := svc.Recompute(runID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if sum.RunID != runID {
		t.Errorf("expected run id %q, got %q", runID, sum.RunID)
	}
	if !sum.Reliable {
		t.Errorf("expected reliable summary for 50 points, got %+v", sum)
	}

	stored, err := s.GetSummary(runID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if stored.CorrDim != sum.CorrDim {
		t.Errorf("stored summary differs: %f vs %f", stored.CorrDim, sum.CorrDim)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	s := newTestStore(t)
	runID := storedRun(t, s, 40)

	svc := New(s, s, attractor.DefaultOptions())

	first, err := svc.Recompute(runID)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := svc.Recompute(runID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}

	if first.CorrDim != second.CorrDim || first.LyapCanonical != second.LyapCanonical {
		t.Errorf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestRecomputeNotFound(t *testing.T) {
	s := newTestStore(t)
	svc := New(s, s, attractor.DefaultOptions())

	if _, err := svc.Recompute("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecomputeShortRunUnreliable(t *testing.T) {
	s := newTestStore(t)
	runID := storedRun(t, s, 4)

	svc := New(s, s, attractor.DefaultOptions())

	sum, err := svc.Recompute(runID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if sum.Reliable {
		t.Error("4-point run must not be reliable")
	}

	// The unreliable summary is still persisted as best-effort knowledge.
	if _, err := s.GetSummary(runID); err != nil {
		t.Errorf("expected stored summary, got %v", err)
	}
}

// Embeddings produced by the real hashing path survive the store round
// trip bit-for-bit, so recompute sees exactly the engine's trajectory.
func TestRecomputeOnHashedEmbeddings(t *testing.T) {
	s := newTestStore(t)

	records := make([]probe.LapRecord, 32)
	for i := range records {
		vec, _ := embedding.HashEmbedding("lap output text", 8, 3)
		records[i] = probe.LapRecord{LapIndex: i, Embedding: vec}
	}
	spec := probe.RunSpec{Provider: "script", Laps: 32, Samples: 1, EmbeddingDim: 8, EmbeddingNgram: 3}
	runID, err := s.SaveRun(spec, records)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	svc := New(s, s, attractor.DefaultOptions())
	sum, err := svc.Recompute(runID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if sum.Points != 32 {
		t.Errorf("expected 32 points, got %d", sum.Points)
	}
}
