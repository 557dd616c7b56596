// Package attractor reconstructs the phase space of an embedding
// trajectory and estimates chaos and stability indicators.
//
// The pipeline for one run:
//
//   - [DelayEmbed]: Takens delay embedding of the lap embedding sequence
//   - [CorrelationDimension]: Grassberger-Procaccia scaling-region fit
//   - [SimpleLyapunov]: nearest-neighbor one-step divergence estimate
//   - [RosensteinLyapunov]: windowed-regression divergence estimate
//   - [Summarize]: full summary with a reliability verdict
//
// # Reliability
//
// Trajectories here are short (tens to low hundreds of points) and
// noisy. Every estimator degrades to a zero value on degenerate input
// instead of failing, and Summarize flags low-confidence results:
//
//	sum, _ := attractor.Summarize(embeddings, attractor.DefaultOptions())
//	if !sum.Reliable {
//	    // Treat all numeric fields as non-authoritative
//	}
package attractor
