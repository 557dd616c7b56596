// Package provider defines the generation backend boundary: an opaque,
// repeatedly-callable text generator that may be remote, rate-limited
// or unreliable. Adapters for a JSON-over-HTTP backend, a scripted
// offline backend and a seeded noise backend are included.
package provider

import (
	"context"
	"fmt"
)

// GenSpec carries per-call generation parameters.
type GenSpec struct {
	Model string
}

// Provider is the generation backend contract. Generate must be safe
// to call repeatedly with the same prompt; outputs are expected to vary.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, spec GenSpec) (string, error)
}

// UnknownProviderError is a configuration error: the requested provider
// name is not in the registry's fixed variant set.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("provider: unknown provider %q", e.Name)
}
