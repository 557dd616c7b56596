package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/san-kum/probelab/internal/attractor"
	"github.com/san-kum/probelab/internal/config"
	"github.com/san-kum/probelab/internal/probe"
	"github.com/san-kum/probelab/internal/provider"
	"github.com/san-kum/probelab/internal/service"
	"github.com/san-kum/probelab/internal/store"
	"github.com/san-kum/probelab/internal/telemetry"
	"github.com/san-kum/probelab/internal/tui"
)

var (
	dataDir    string
	configFile string

	providerName string
	model        string
	prompt       string
	condition    string
	laps         int
	samples      int
	dim          int
	ngram        int
	preset       string
	live         bool
	quiet        bool

	analysisM         int
	analysisTau       int
	analysisMinPoints int

	exportPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "probelab",
		Short: "probe a stochastic text generator and analyze its trajectory",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".probelab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "execute a probe run and store it",
		RunE:  runProbe,
	}
	runCmd.Flags().StringVar(&providerName, "provider", "", "generation provider")
	runCmd.Flags().StringVar(&model, "model", "", "model name passed to the provider")
	runCmd.Flags().StringVar(&prompt, "prompt", "", "prompt sent every lap")
	runCmd.Flags().StringVar(&condition, "condition", "", "experiment condition label")
	runCmd.Flags().IntVar(&laps, "laps", 0, "number of laps")
	runCmd.Flags().IntVar(&samples, "samples", 0, "monte carlo samples per lap (>1 enables sampling)")
	runCmd.Flags().IntVar(&dim, "dim", 0, "embedding dimension")
	runCmd.Flags().IntVar(&ngram, "ngram", 0, "embedding n-gram length")
	runCmd.Flags().StringVar(&preset, "preset", "", "named run preset")
	runCmd.Flags().BoolVar(&live, "live", false, "show live lap view")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress telemetry output")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "recompute the attractor summary for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&analysisM, "m", config.DefaultM, "delay embedding dimension")
	analyzeCmd.Flags().IntVar(&analysisTau, "tau", config.DefaultTau, "delay step")
	analyzeCmd.Flags().IntVar(&analysisMinPoints, "min-points", config.DefaultMinPoints, "points required for a reliable verdict")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "show a run's attractor summary and divergence curve",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				spec := config.GetPreset(name)
				fmt.Printf("%-12s laps=%d samples=%d dim=%d\n", name, spec.Laps, spec.Samples, spec.EmbeddingDim)
			}
		},
	}

	rootCmd.AddCommand(runCmd, analyzeCmd, listCmd, showCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.DefaultConfig(), nil
}

func openStore() (*store.Store, *sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "probelab.db"))
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return st, db, nil
}

// buildSpec merges preset, config defaults and explicit flags. Flags
// win; the preset overrides config defaults.
func buildSpec(cfg *config.Config) (probe.RunSpec, error) {
	spec := cfg.Run
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return probe.RunSpec{}, fmt.Errorf("unknown preset %q", preset)
		}
		prompt0 := spec.Prompt
		spec = *p
		if spec.Prompt == "" {
			spec.Prompt = prompt0
		}
	}

	if providerName != "" {
		spec.Provider = providerName
	}
	if model != "" {
		spec.Model = model
	}
	if prompt != "" {
		spec.Prompt = prompt
	}
	if condition != "" {
		spec.Condition = condition
	}
	if laps > 0 {
		spec.Laps = laps
	}
	if samples > 0 {
		spec.Samples = samples
	}
	if dim > 0 {
		spec.EmbeddingDim = dim
	}
	if ngram > 0 {
		spec.EmbeddingNgram = ngram
	}
	return spec, nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	spec, err := buildSpec(cfg)
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	st, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if live {
		return runProbeLive(cfg, spec, registry, st)
	}

	var sink telemetry.Sink
	if !quiet {
		sink = telemetry.NewWriter(os.Stderr)
	}

	engine := probe.New(registry, sink)
	records, err := engine.Run(context.Background(), spec)
	if err != nil {
		return err
	}

	runID, err := st.SaveRun(spec, records)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d laps stored\n", runID, len(records))

	svc := service.New(st, st, cfg.Analysis)
	sum, err := svc.Recompute(runID)
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}

// runProbeLive drives the bubbletea view while the engine works in a
// goroutine; lap events reach the view through the telemetry sink.
func runProbeLive(cfg *config.Config, spec probe.RunSpec, registry *provider.Registry, st *store.Store) error {
	p := tea.NewProgram(tui.NewModel(spec))

	go func() {
		engine := probe.New(registry, tui.NewSink(p))
		records, err := engine.Run(context.Background(), spec)
		if err != nil {
			p.Send(tui.DoneMsg{Err: err})
			return
		}

		runID, err := st.SaveRun(spec, records)
		if err != nil {
			p.Send(tui.DoneMsg{Err: err})
			return
		}

		svc := service.New(st, st, cfg.Analysis)
		if _, err := svc.Recompute(runID); err != nil {
			p.Send(tui.DoneMsg{Err: err})
			return
		}
		p.Send(tui.DoneMsg{RunID: runID})
	}()

	_, err := p.Run()
	return err
}

func printSummary(sum attractor.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "points\t%d\n", sum.Points)
	fmt.Fprintf(w, "delay rows\t%d\n", sum.DelayRows)
	fmt.Fprintf(w, "m / tau\t%d / %d\n", sum.M, sum.Tau)
	fmt.Fprintf(w, "corr dim\t%.4f\n", sum.CorrDim)
	fmt.Fprintf(w, "lyapunov (simple)\t%.4f\n", sum.Lyap)
	fmt.Fprintf(w, "lyapunov (rosenstein)\t%.4f (r2=%.3f, window %s)\n", sum.LyapRosenstein, sum.LyapR2, sum.LyapWindow)
	fmt.Fprintf(w, "lyapunov (canonical)\t%.4f\n", sum.LyapCanonical)
	fmt.Fprintf(w, "reliable\t%v\n", sum.Reliable)
	fmt.Fprintf(w, "note\t%s\n", sum.Note)
	w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	opts := attractor.Options{M: analysisM, Tau: analysisTau, MinPoints: analysisMinPoints}
	svc := service.New(st, st, opts)

	sum, err := svc.Recompute(args[0])
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tMODEL\tCONDITION\tLAPS\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID, run.Spec.Provider, run.Spec.Model, run.Spec.Condition,
			run.Spec.Laps, run.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	runID := args[0]

	sum, err := st.GetSummary(runID)
	if err != nil {
		return err
	}
	printSummary(sum)

	embeddings, err := st.LoadEmbeddings(runID)
	if err != nil {
		return err
	}

	delays := attractor.DelayEmbed(embeddings, sum.M, sum.Tau)
	curve := attractor.DivergenceCurve(delays)
	if len(curve) >= 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(curve,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("nearest-neighbor log-divergence by horizon")))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	out := os.Stdout
	if exportPath != "" {
		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return st.ExportJSON(out, args[0])
}
