package store

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/san-kum/probelab/internal/attractor"
	"github.com/san-kum/probelab/internal/probe"
)

// ExportData is the full JSON dump of one stored run.
type ExportData struct {
	RunID     string             `json:"run_id"`
	Spec      probe.RunSpec      `json:"spec"`
	CreatedAt time.Time          `json:"created_at"`
	Laps      []probe.LapRecord  `json:"laps"`
	Summary   *attractor.Summary `json:"summary,omitempty"`
}

// ExportJSON writes a run, its laps and its summary (when one exists)
// as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.GetRun(runID)
	if err != nil {
		return err
	}

	laps, err := s.LoadLaps(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunID:     meta.ID,
		Spec:      meta.Spec,
		CreatedAt: meta.CreatedAt,
		Laps:      laps,
	}

	sum, err := s.GetSummary(runID)
	if err == nil {
		data.Summary = &sum
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
