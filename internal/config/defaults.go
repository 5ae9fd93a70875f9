// Package config holds leapgen's project-level configuration defaults and
// locates project configuration files. It has no CLI dependencies.
package config

import "github.com/leapstack-labs/leapgen/internal/emit/fastapi"

// Config file names, in lookup order.
const (
	ConfigFileName    = "leapgen.yaml"
	ConfigFileNameAlt = "leapgen.yml"
)

// Default configuration values.
const (
	DefaultInput         = "model.csv"
	DefaultOutputDir     = "output"
	DefaultBaseURL       = "http://127.0.0.1:8000"
	DefaultFastAPILayout = fastapi.LayoutSingle
)

// DefaultBackends returns the backends generated when none are configured.
func DefaultBackends() []string {
	return []string{"django", "fastapi", "smoketest"}
}
