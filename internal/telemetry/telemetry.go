// Package telemetry defines the fire-and-forget event sink used by the
// probe engine. Sinks are injected dependencies with a no-op default,
// so tests can assert on emitted events without real infrastructure.
package telemetry

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Sink receives named events with numeric measurements and string
// metadata. Implementations must not block for long; errors and panics
// from a sink never reach the caller (see Emit).
type Sink interface {
	Emit(event string, measurements map[string]float64, metadata map[string]string)
}

// Emit forwards an event to sink, swallowing nil sinks and panics.
// Telemetry failures must never affect the observed computation.
func Emit(sink Sink, event string, measurements map[string]float64, metadata map[string]string) {
	if sink == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	sink.Emit(event, measurements, metadata)
}

// NoOp discards all events.
type NoOp struct{}

func (NoOp) Emit(string, map[string]float64, map[string]string) {}

// Event is one recorded telemetry emission.
type Event struct {
	Name         string
	Measurements map[string]float64
	Metadata     map[string]string
}

// Recorder captures events in memory for test assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(event string, measurements map[string]float64, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: event, Measurements: measurements, Metadata: metadata})
}

// Events returns a copy of all recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Writer emits events as JSON lines to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

type writerEvent struct {
	Time         time.Time          `json:"time"`
	Event        string             `json:"event"`
	Measurements map[string]float64 `json:"measurements"`
	Metadata     map[string]string  `json:"metadata"`
}

func (w *Writer) Emit(event string, measurements map[string]float64, metadata map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	enc := json.NewEncoder(w.out)
	_ = enc.Encode(writerEvent{
		Time:         time.Now(),
		Event:        event,
		Measurements: measurements,
		Metadata:     metadata,
	})
}
