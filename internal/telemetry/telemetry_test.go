package telemetry

import (
	"bytes"
	"strings"
	"testing"
)

type panicSink struct{}

func (panicSink) Emit(string, map[string]float64, map[string]string) {
	panic("sink exploded")
}

func TestEmitSwallowsPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped Emit: %v", r)
		}
	}()
	Emit(panicSink{}, "event", nil, nil)
}

func TestEmitNilSink(t *testing.T) {
	Emit(nil, "event", map[string]float64{"x": 1}, nil)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	Emit(rec, "lap.completed", map[string]float64{"entropy": 2.5}, map[string]string{"provider": "noise"})
	Emit(rec, "lap.completed", map[string]float64{"entropy": 2.7}, nil)

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "lap.completed" {
		t.Errorf("unexpected event name %q", events[0].Name)
	}
	if events[0].Measurements["entropy"] != 2.5 {
		t.Errorf("unexpected measurement %f", events[0].Measurements["entropy"])
	}
	if events[0].Metadata["provider"] != "noise" {
		t.Errorf("unexpected metadata %q", events[0].Metadata["provider"])
	}
}

func TestWriterEmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Emit("probe.lap", map[string]float64{"elapsed_ms": 12}, map[string]string{"model": "m"})

	line := buf.String()
	if !strings.Contains(line, `"event":"probe.lap"`) {
		t.Errorf("missing event field: %s", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("expected newline-terminated output")
	}
}
