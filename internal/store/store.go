// Package store persists probe runs, lap records and attractor
// summaries in SQLite. Laps are keyed by (run_id, lap_index) so the
// stored order is exactly the trajectory order; summaries are one row
// per run, replaced on recompute.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/probelab/internal/attractor"
	"github.com/san-kum/probelab/internal/montecarlo"
	"github.com/san-kum/probelab/internal/probe"
)

// ErrNotFound indicates the requested run does not exist.
var ErrNotFound = errors.New("store: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    provider        TEXT NOT NULL,
    model           TEXT NOT NULL,
    prompt          TEXT NOT NULL,
    condition       TEXT NOT NULL,
    laps            INTEGER NOT NULL,
    samples         INTEGER NOT NULL,
    embedding_dim   INTEGER NOT NULL,
    embedding_ngram INTEGER NOT NULL,
    created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS laps (
    run_id            TEXT NOT NULL,
    lap_index         INTEGER NOT NULL,
    response_preview  TEXT NOT NULL,
    char_entropy      REAL NOT NULL,
    lexical_diversity REAL NOT NULL,
    repetition_ratio  REAL NOT NULL,
    cosine_to_prev    REAL NOT NULL,
    embedding         TEXT NOT NULL,
    elapsed_ms        INTEGER NOT NULL,
    mc_dist           TEXT,
    js_divergence     REAL,
    topk_overlap      REAL,
    PRIMARY KEY (run_id, lap_index)
);

CREATE TABLE IF NOT EXISTS summaries (
    run_id          TEXT PRIMARY KEY,
    points          INTEGER NOT NULL,
    delay_rows      INTEGER NOT NULL,
    m               INTEGER NOT NULL,
    tau             INTEGER NOT NULL,
    corr_dim        REAL NOT NULL,
    lyap            REAL NOT NULL,
    lyap_rosenstein REAL NOT NULL,
    lyap_r2         REAL NOT NULL,
    lyap_window     TEXT NOT NULL,
    lyap_canonical  REAL NOT NULL,
    reliable        INTEGER NOT NULL,
    note            TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);
`

// Store wraps a SQLite handle. Callers open the database and import the
// driver; tests use ":memory:".
type Store struct {
	db *sql.DB
}

// New initializes the schema and returns a Store.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RunMeta describes one stored run.
type RunMeta struct {
	ID        string
	Spec      probe.RunSpec
	CreatedAt time.Time
}

// SaveRun persists a run spec and its lap records atomically and
// returns the generated run id.
func (s *Store) SaveRun(spec probe.RunSpec, records []probe.LapRecord) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs
		(id, provider, model, prompt, condition, laps, samples, embedding_dim, embedding_ngram, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, spec.Provider, spec.Model, spec.Prompt, spec.Condition,
		spec.Laps, spec.Samples, spec.EmbeddingDim, spec.EmbeddingNgram,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}

	for _, rec := range records {
		emb, err := json.Marshal(rec.Embedding)
		if err != nil {
			return "", fmt.Errorf("store: marshal embedding: %w", err)
		}

		var dist any
		if rec.MCDist != nil {
			data, err := json.Marshal(rec.MCDist)
			if err != nil {
				return "", fmt.Errorf("store: marshal distribution: %w", err)
			}
			dist = string(data)
		}

		_, err = tx.Exec(`
			INSERT INTO laps
			(run_id, lap_index, response_preview, char_entropy, lexical_diversity,
			 repetition_ratio, cosine_to_prev, embedding, elapsed_ms,
			 mc_dist, js_divergence, topk_overlap)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.LapIndex, rec.ResponsePreview, rec.CharEntropy,
			rec.LexicalDiversity, rec.RepetitionRatio, rec.CosineToPrev,
			string(emb), rec.ElapsedMS,
			dist, nullableFloat(rec.JSDivVs), nullableFloat(rec.TopKOverlap),
		)
		if err != nil {
			return "", fmt.Errorf("store: insert lap %d: %w", rec.LapIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// GetRun loads a run's metadata.
func (s *Store) GetRun(runID string) (RunMeta, error) {
	var meta RunMeta
	var createdAt string

	err := s.db.QueryRow(`
		SELECT id, provider, model, prompt, condition, laps, samples,
		       embedding_dim, embedding_ngram, created_at
		FROM runs WHERE id = ?`, runID,
	).Scan(
		&meta.ID, &meta.Spec.Provider, &meta.Spec.Model, &meta.Spec.Prompt,
		&meta.Spec.Condition, &meta.Spec.Laps, &meta.Spec.Samples,
		&meta.Spec.EmbeddingDim, &meta.Spec.EmbeddingNgram, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunMeta{}, ErrNotFound
	}
	if err != nil {
		return RunMeta{}, err
	}

	meta.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return meta, nil
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]RunMeta, error) {
	rows, err := s.db.Query(`
		SELECT id, provider, model, prompt, condition, laps, samples,
		       embedding_dim, embedding_ngram, created_at
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var meta RunMeta
		var createdAt string
		if err := rows.Scan(
			&meta.ID, &meta.Spec.Provider, &meta.Spec.Model, &meta.Spec.Prompt,
			&meta.Spec.Condition, &meta.Spec.Laps, &meta.Spec.Samples,
			&meta.Spec.EmbeddingDim, &meta.Spec.EmbeddingNgram, &createdAt,
		); err != nil {
			return nil, err
		}
		meta.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// LoadLaps returns a run's lap records ordered by lap index.
func (s *Store) LoadLaps(runID string) ([]probe.LapRecord, error) {
	meta, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT lap_index, response_preview, char_entropy, lexical_diversity,
		       repetition_ratio, cosine_to_prev, embedding, elapsed_ms,
		       mc_dist, js_divergence, topk_overlap
		FROM laps WHERE run_id = ? ORDER BY lap_index ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []probe.LapRecord
	for rows.Next() {
		var rec probe.LapRecord
		var emb string
		var dist sql.NullString
		var js, overlap sql.NullFloat64

		if err := rows.Scan(
			&rec.LapIndex, &rec.ResponsePreview, &rec.CharEntropy,
			&rec.LexicalDiversity, &rec.RepetitionRatio, &rec.CosineToPrev,
			&emb, &rec.ElapsedMS, &dist, &js, &overlap,
		); err != nil {
			return nil, err
		}

		rec.Provider = meta.Spec.Provider
		rec.Model = meta.Spec.Model
		rec.Condition = meta.Spec.Condition

		if err := json.Unmarshal([]byte(emb), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("store: decode embedding for lap %d: %w", rec.LapIndex, err)
		}
		if dist.Valid {
			var d montecarlo.Distribution
			if err := json.Unmarshal([]byte(dist.String), &d); err != nil {
				return nil, fmt.Errorf("store: decode distribution for lap %d: %w", rec.LapIndex, err)
			}
			rec.MCDist = d
		}
		if js.Valid {
			v := js.Float64
			rec.JSDivVs = &v
		}
		if overlap.Valid {
			v := overlap.Float64
			rec.TopKOverlap = &v
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadEmbeddings returns a run's embeddings ordered by lap index.
func (s *Store) LoadEmbeddings(runID string) ([][]float64, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT embedding FROM laps WHERE run_id = ? ORDER BY lap_index ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var embeddings [][]float64
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, fmt.Errorf("store: decode embedding: %w", err)
		}
		embeddings = append(embeddings, vec)
	}
	return embeddings, rows.Err()
}

// UpsertSummary writes the summary for a run, replacing any existing
// row. The conflict clause keeps concurrent recomputes from racing a
// read-then-write cycle.
func (s *Store) UpsertSummary(sum attractor.Summary) error {
	reliable := 0
	if sum.Reliable {
		reliable = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO summaries
		(run_id, points, delay_rows, m, tau, corr_dim, lyap, lyap_rosenstein,
		 lyap_r2, lyap_window, lyap_canonical, reliable, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
		 points = excluded.points,
		 delay_rows = excluded.delay_rows,
		 m = excluded.m,
		 tau = excluded.tau,
		 corr_dim = excluded.corr_dim,
		 lyap = excluded.lyap,
		 lyap_rosenstein = excluded.lyap_rosenstein,
		 lyap_r2 = excluded.lyap_r2,
		 lyap_window = excluded.lyap_window,
		 lyap_canonical = excluded.lyap_canonical,
		 reliable = excluded.reliable,
		 note = excluded.note,
		 updated_at = excluded.updated_at`,
		sum.RunID, sum.Points, sum.DelayRows, sum.M, sum.Tau, sum.CorrDim,
		sum.Lyap, sum.LyapRosenstein, sum.LyapR2, sum.LyapWindow,
		sum.LyapCanonical, reliable, sum.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetSummary loads the summary for a run. ErrNotFound when absent.
func (s *Store) GetSummary(runID string) (attractor.Summary, error) {
	var sum attractor.Summary
	var reliable int

	err := s.db.QueryRow(`
		SELECT run_id, points, delay_rows, m, tau, corr_dim, lyap,
		       lyap_rosenstein, lyap_r2, lyap_window, lyap_canonical,
		       reliable, note
		FROM summaries WHERE run_id = ?`, runID,
	).Scan(
		&sum.RunID, &sum.Points, &sum.DelayRows, &sum.M, &sum.Tau,
		&sum.CorrDim, &sum.Lyap, &sum.LyapRosenstein, &sum.LyapR2,
		&sum.LyapWindow, &sum.LyapCanonical, &reliable, &sum.Note,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return attractor.Summary{}, ErrNotFound
	}
	if err != nil {
		return attractor.Summary{}, err
	}

	sum.Reliable = reliable == 1
	return sum, nil
}
