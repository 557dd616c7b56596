package provider

import (
	"context"
	"errors"
	"sync"
)

// Script replays a fixed list of outputs in order, cycling when it
// reaches the end. Useful for offline runs and deterministic tests.
type Script struct {
	name    string
	outputs []string
	mu      sync.Mutex
	next    int
}

func NewScript(name string, outputs []string) (*Script, error) {
	if len(outputs) == 0 {
		return nil, errors.New("provider: script needs at least one output")
	}
	if name == "" {
		name = "script"
	}
	return &Script{name: name, outputs: outputs}, nil
}

func (s *Script) Name() string { return s.name }

func (s *Script) Generate(ctx context.Context, prompt string, spec GenSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.outputs[s.next%len(s.outputs)]
	s.next++
	return out, nil
}
