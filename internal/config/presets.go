package config

import "github.com/san-kum/probelab/internal/probe"

// Presets are named probe configurations for common experiment shapes.
var Presets = map[string]probe.RunSpec{
	"quick": {
		Provider: "noise", Condition: "quick",
		Laps: 10, Samples: 1, EmbeddingDim: 32, EmbeddingNgram: 3,
	},
	"baseline": {
		Provider: "noise", Condition: "baseline",
		Laps: 50, Samples: 1, EmbeddingDim: 64, EmbeddingNgram: 3,
	},
	"divergence": {
		Provider: "noise", Condition: "divergence",
		Laps: 50, Samples: 8, EmbeddingDim: 64, EmbeddingNgram: 3,
	},
	"long": {
		Provider: "noise", Condition: "long",
		Laps: 120, Samples: 1, EmbeddingDim: 128, EmbeddingNgram: 4,
	},
}

// GetPreset returns the named preset, or nil if it does not exist.
func GetPreset(name string) *probe.RunSpec {
	spec, ok := Presets[name]
	if !ok {
		return nil
	}
	return &spec
}

// ListPresets returns all preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
