// Package config loads engine policy from YAML with environment overrides.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/flownet-io/flownet/pkg/keyman"
)

// Config is the full engine policy. All knobs have working defaults; a
// missing file or section falls back to them.
type Config struct {
	Centrality CentralityConfig `yaml:"centrality"`
	Keyman     KeymanConfig     `yaml:"keyman"`
	Bottleneck BottleneckConfig `yaml:"bottleneck"`
	Paths      PathsConfig      `yaml:"paths"`
}

// CentralityConfig bounds the power iteration.
type CentralityConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// KeymanConfig sets the KI component weights.
type KeymanConfig struct {
	Weights keyman.Weights `yaml:"weights"`
}

// BottleneckConfig tunes the bottleneck scan.
type BottleneckConfig struct {
	SampleSources    int     `yaml:"sample_sources"`
	DefaultThreshold float64 `yaml:"default_threshold"`
}

// PathsConfig bounds the all-paths enumeration.
type PathsConfig struct {
	MaxResults int `yaml:"max_results"`
	MaxDepth   int `yaml:"max_depth"`
}

// Default returns the built-in policy.
func Default() *Config {
	return &Config{
		Centrality: CentralityConfig{
			MaxIterations: 100,
			Tolerance:     1e-6,
		},
		Keyman: KeymanConfig{
			Weights: keyman.DefaultWeights(),
		},
		Bottleneck: BottleneckConfig{
			SampleSources:    16,
			DefaultThreshold: 0.5,
		},
		Paths: PathsConfig{
			MaxResults: 10,
		},
	}
}

// Load reads a YAML config file, fills defaults for missing fields, applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides selected knobs from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("FLOWNET_CENTRALITY_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Centrality.MaxIterations = n
		}
	}
	if v := os.Getenv("FLOWNET_CENTRALITY_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Centrality.Tolerance = f
		}
	}
	if v := os.Getenv("FLOWNET_BOTTLENECK_SAMPLE_SOURCES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bottleneck.SampleSources = n
		}
	}
}

// fillDefaults replaces zero values with the built-in defaults.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Centrality.MaxIterations <= 0 {
		c.Centrality.MaxIterations = def.Centrality.MaxIterations
	}
	if c.Centrality.Tolerance <= 0 {
		c.Centrality.Tolerance = def.Centrality.Tolerance
	}
	if c.Keyman.Weights.Sum() == 0 {
		c.Keyman.Weights = def.Keyman.Weights
	}
	if c.Bottleneck.SampleSources <= 0 {
		c.Bottleneck.SampleSources = def.Bottleneck.SampleSources
	}
	if c.Bottleneck.DefaultThreshold <= 0 {
		c.Bottleneck.DefaultThreshold = def.Bottleneck.DefaultThreshold
	}
	if c.Paths.MaxResults <= 0 {
		c.Paths.MaxResults = def.Paths.MaxResults
	}
}

// Validate rejects inconsistent policy, most importantly KI weights that do
// not sum to 1.
func (c *Config) Validate() error {
	if math.Abs(c.Keyman.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("keyman weights must sum to 1.0, got %v", c.Keyman.Weights.Sum())
	}
	if c.Keyman.Weights.Connectivity < 0 || c.Keyman.Weights.Flow < 0 || c.Keyman.Weights.Value < 0 {
		return fmt.Errorf("keyman weights must be non-negative")
	}
	if c.Centrality.MaxIterations <= 0 {
		return fmt.Errorf("centrality max_iterations must be positive")
	}
	if c.Centrality.Tolerance <= 0 {
		return fmt.Errorf("centrality tolerance must be positive")
	}
	return nil
}
