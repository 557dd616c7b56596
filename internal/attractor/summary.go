package attractor

import "fmt"

const (
	// canonicalR2 is the fit quality above which the Rosenstein slope
	// is preferred over the simple estimate.
	canonicalR2 = 0.6

	// minDelayRows is the delay row count a summary must exceed to be
	// marked reliable.
	minDelayRows = 5
)

// Options configures the delay embedding and reliability threshold.
type Options struct {
	M         int `yaml:"m"`
	Tau       int `yaml:"tau"`
	MinPoints int `yaml:"min_points"`
}

// DefaultOptions returns the standard parameters: embedding dimension
// 3, delay 1, 30 points required for reliability.
func DefaultOptions() Options {
	return Options{M: 3, Tau: 1, MinPoints: 30}
}

// Summary is the dynamical-systems verdict for one run's trajectory.
// It represents current best knowledge, not a history: recomputing a
// run replaces its summary. All numeric fields are defined even when
// Reliable is false, but must then be treated as non-authoritative.
type Summary struct {
	RunID          string  `json:"run_id,omitempty"`
	Points         int     `json:"points"`
	DelayRows      int     `json:"delay_rows"`
	M              int     `json:"m"`
	Tau            int     `json:"tau"`
	CorrDim        float64 `json:"corr_dim"`
	Lyap           float64 `json:"lyap"`
	LyapRosenstein float64 `json:"lyap_rosenstein"`
	LyapR2         float64 `json:"lyap_r2"`
	LyapWindow     string  `json:"lyap_window"`
	LyapCanonical  float64 `json:"lyap_canonical"`
	Reliable       bool    `json:"reliable"`
	Note           string  `json:"note"`
}

// Summarize reduces an ordered embedding sequence to a single summary.
// Degenerate input (zero or one point) never fails; it degrades to a
// zero-valued summary flagged unreliable. Invalid options are the only
// error condition.
func Summarize(embeddings [][]float64, opts Options) (Summary, error) {
	if opts.M < 1 {
		return Summary{}, fmt.Errorf("attractor: m must be at least 1, got %d", opts.M)
	}
	if opts.Tau < 1 {
		return Summary{}, fmt.Errorf("attractor: tau must be at least 1, got %d", opts.Tau)
	}
	if opts.MinPoints < 1 {
		return Summary{}, fmt.Errorf("attractor: min points must be at least 1, got %d", opts.MinPoints)
	}

	delays := DelayEmbed(embeddings, opts.M, opts.Tau)

	sum := Summary{
		Points:    len(embeddings),
		DelayRows: len(delays),
		M:         opts.M,
		Tau:       opts.Tau,
		CorrDim:   CorrelationDimension(delays),
		Lyap:      SimpleLyapunov(delays),
	}

	slope, r2, window := RosensteinLyapunov(delays)
	sum.LyapRosenstein = slope
	sum.LyapR2 = r2
	sum.LyapWindow = window.String()

	if r2 >= canonicalR2 {
		sum.LyapCanonical = slope
	} else {
		sum.LyapCanonical = sum.Lyap
	}

	sum.Reliable = sum.Points >= opts.MinPoints && sum.DelayRows > minDelayRows
	if sum.Reliable {
		sum.Note = "heuristics only; no scaling region validation performed"
	} else {
		sum.Note = fmt.Sprintf("insufficient data (points=%d, delay_rows=%d, min_points=%d)",
			sum.Points, sum.DelayRows, opts.MinPoints)
	}

	return sum, nil
}
