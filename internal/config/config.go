package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/probelab/internal/attractor"
	"github.com/san-kum/probelab/internal/probe"
	"github.com/san-kum/probelab/internal/provider"
)

const (
	DefaultLaps      = 30
	DefaultSamples   = 1
	DefaultDim       = 64
	DefaultNgram     = 3
	DefaultM         = 3
	DefaultTau       = 1
	DefaultMinPoints = 30
	DefaultNoiseSeed = 1
)

// Config is the full probelab configuration.
type Config struct {
	DataDir   string              `yaml:"data_dir"`
	Run       probe.RunSpec       `yaml:"run"`
	Analysis  attractor.Options   `yaml:"analysis"`
	HTTP      provider.HTTPConfig `yaml:"http_provider"`
	NoiseSeed int64               `yaml:"noise_seed"`
	Script    []string            `yaml:"script_outputs"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: ".probelab",
		Run: probe.RunSpec{
			Provider:       "noise",
			Prompt:         "Continue the story in one sentence.",
			Condition:      "default",
			Laps:           DefaultLaps,
			Samples:        DefaultSamples,
			EmbeddingDim:   DefaultDim,
			EmbeddingNgram: DefaultNgram,
		},
		Analysis: attractor.Options{
			M:         DefaultM,
			Tau:       DefaultTau,
			MinPoints: DefaultMinPoints,
		},
		HTTP: provider.HTTPConfig{
			Name:    "http",
			URL:     "http://localhost:8080",
			Timeout: 120 * time.Second,
		},
		NoiseSeed: DefaultNoiseSeed,
	}
}

// Load reads a yaml config, filling unset fields from DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Registry builds the fixed provider set from the configuration.
func (c *Config) Registry() (*provider.Registry, error) {
	reg := provider.NewRegistry()

	if err := reg.Register(provider.NewHTTP(c.HTTP)); err != nil {
		return nil, err
	}
	if err := reg.Register(provider.NewNoise("noise", c.NoiseSeed)); err != nil {
		return nil, err
	}
	if len(c.Script) > 0 {
		script, err := provider.NewScript("script", c.Script)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(script); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
