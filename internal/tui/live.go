// Package tui renders a live view of a probe run: per-lap surface
// statistics streamed off the telemetry sink while the engine works.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/probelab/internal/probe"
)

const historyCapacity = 200

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// LapMsg carries one completed lap's measurements into the view.
type LapMsg struct {
	LapIndex         int
	CharEntropy      float64
	LexicalDiversity float64
	RepetitionRatio  float64
	CosineToPrev     float64
	ElapsedMS        float64
}

// DoneMsg signals that the run finished (or failed).
type DoneMsg struct {
	RunID string
	Err   error
}

// Model is the bubbletea model for a live probe run.
type Model struct {
	spec    probe.RunSpec
	laps    []LapMsg
	entropy []float64
	cosine  []float64
	runID   string
	done    bool
	err     error
}

func NewModel(spec probe.RunSpec) Model {
	return Model{
		spec:    spec,
		laps:    make([]LapMsg, 0, spec.Laps),
		entropy: make([]float64, 0, historyCapacity),
		cosine:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case LapMsg:
		m.laps = append(m.laps, msg)
		m.entropy = appendCapped(m.entropy, msg.CharEntropy)
		m.cosine = appendCapped(m.cosine, msg.CosineToPrev)

	case DoneMsg:
		m.done = true
		m.runID = msg.RunID
		m.err = msg.Err
	}
	return m, nil
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("probelab · %s · %s", m.spec.Provider, m.spec.Condition)
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("laps", fmt.Sprintf("%d / %d", len(m.laps), m.spec.Laps))
	if last := m.last(); last != nil {
		row("char entropy", fmt.Sprintf("%.4f", last.CharEntropy))
		row("lexical diversity", fmt.Sprintf("%.4f", last.LexicalDiversity))
		row("repetition", fmt.Sprintf("%.4f", last.RepetitionRatio))
		row("cosine to prev", fmt.Sprintf("%.4f", last.CosineToPrev))
		row("elapsed", fmt.Sprintf("%.0f ms", last.ElapsedMS))
	}

	if len(m.entropy) >= 2 {
		graph := asciigraph.Plot(m.entropy,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("char entropy per lap"))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("run failed: %v", m.err)))
		} else {
			b.WriteString(doneStyle.Render(fmt.Sprintf("run complete · id %s", m.runID)))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) last() *LapMsg {
	if len(m.laps) == 0 {
		return nil
	}
	return &m.laps[len(m.laps)-1]
}

// Sink adapts a running bubbletea program to the telemetry.Sink
// interface so the engine's lap events drive the view.
type Sink struct {
	program *tea.Program
}

func NewSink(p *tea.Program) *Sink {
	return &Sink{program: p}
}

func (s *Sink) Emit(event string, measurements map[string]float64, metadata map[string]string) {
	if event != probe.LapEvent {
		return
	}
	lap := 0
	fmt.Sscanf(metadata["lap_index"], "%d", &lap)
	s.program.Send(LapMsg{
		LapIndex:         lap,
		CharEntropy:      measurements["char_entropy"],
		LexicalDiversity: measurements["lexical_diversity"],
		RepetitionRatio:  measurements["repetition_ratio"],
		CosineToPrev:     measurements["cosine_to_prev"],
		ElapsedMS:        measurements["elapsed_ms"],
	})
}
