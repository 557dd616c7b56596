package tui

import (
	"strings"
	"testing"

	"github.com/san-kum/probelab/internal/probe"
)

func testSpec() probe.RunSpec {
	return probe.RunSpec{Provider: "noise", Condition: "test", Laps: 5, Samples: 1, EmbeddingDim: 8, EmbeddingNgram: 3}
}

func TestModelTracksLaps(t *testing.T) {
	m := NewModel(testSpec())

	next, _ := m.Update(LapMsg{LapIndex: 0, CharEntropy: 2.1})
	next, _ = next.Update(LapMsg{LapIndex: 1, CharEntropy: 2.3, CosineToPrev: 0.9})

	model := next.(Model)
	if len(model.laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(model.laps))
	}

	view := model.View()
	if !strings.Contains(view, "2 / 5") {
		t.Errorf("view missing lap counter:\n%s", view)
	}
	if !strings.Contains(view, "0.9") {
		t.Errorf("view missing cosine value:\n%s", view)
	}
}

func TestModelShowsCompletion(t *testing.T) {
	m := NewModel(testSpec())

	next, _ := m.Update(DoneMsg{RunID: "run-123"})
	view := next.(Model).View()
	if !strings.Contains(view, "run-123") {
		t.Errorf("view missing run id:\n%s", view)
	}
}

func TestModelShowsFailure(t *testing.T) {
	m := NewModel(testSpec())

	next, _ := m.Update(DoneMsg{Err: errFake})
	view := next.(Model).View()
	if !strings.Contains(view, "run failed") {
		t.Errorf("view missing failure notice:\n%s", view)
	}
}

var errFake = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "fake failure" }
