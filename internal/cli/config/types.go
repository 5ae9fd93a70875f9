// Package config loads the leapgen CLI configuration.
//
// Values come from built-in defaults, leapgen.yaml, LEAPGEN_* environment
// variables and command-line flags, each layer overriding the one before.
package config

import (
	intconfig "github.com/leapstack-labs/leapgen/internal/config"
	"github.com/leapstack-labs/leapgen/internal/generate"
)

// DefaultOutput is the default --output mode.
const DefaultOutput = "auto"

// Config holds all CLI configuration options.
type Config struct {
	Input         string   `koanf:"input"`
	OutputDir     string   `koanf:"output_dir"`
	BaseURL       string   `koanf:"base_url"`
	Backends      []string `koanf:"backends"`
	FastAPILayout string   `koanf:"fastapi_layout"`
	Verbose       bool     `koanf:"verbose"`
	OutputFormat  string   `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Input:         intconfig.DefaultInput,
		OutputDir:     intconfig.DefaultOutputDir,
		BaseURL:       intconfig.DefaultBaseURL,
		Backends:      intconfig.DefaultBackends(),
		FastAPILayout: intconfig.DefaultFastAPILayout,
		OutputFormat:  DefaultOutput,
	}
}

// GeneratorConfig converts c into a generator configuration.
func (c *Config) GeneratorConfig() generate.Config {
	return generate.Config{
		Input:         c.Input,
		OutputDir:     c.OutputDir,
		BaseURL:       c.BaseURL,
		Backends:      append([]string(nil), c.Backends...),
		FastAPILayout: c.FastAPILayout,
	}
}
