package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/leapgen/internal/config"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable leapgen reads.
const EnvPrefix = "LEAPGEN_"

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// pathKeys are resolved against the config file's directory when they come
// from the config file, and against the working directory otherwise.
var pathKeys = []string{"input", "output_dir"}

// flagKeys maps flag names that differ from their config keys.
var flagKeys = map[string]string{
	"backend": "backends",
}

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// ResetConfig resets the loader state. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// resolvePathRelativeTo resolves path against baseDir unless it is empty or
// already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// findConfigFile returns the config file to load.
// Priority: explicit path > nearest leapgen.yaml/.yml from the working directory upward.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return intconfig.FindConfigFile(root)
	}
	return ""
}

// LoadConfig loads configuration from defaults, the config file, LEAPGEN_*
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = findConfigFile(cfgFile)

	projectRoot := ""
	if configFileUsed != "" {
		abs, err := filepath.Abs(configFileUsed)
		if err != nil {
			return nil, fmt.Errorf("resolve config file path: %w", err)
		}
		configFileUsed = abs
		projectRoot = filepath.Dir(abs)
	}

	// 1. Defaults. Default paths live next to the config file when there is one.
	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"input":          resolvePathRelativeTo(def.Input, projectRoot),
		"output_dir":     resolvePathRelativeTo(def.OutputDir, projectRoot),
		"base_url":       def.BaseURL,
		"backends":       def.Backends,
		"fastapi_layout": def.FastAPILayout,
		"verbose":        false,
		"output":         def.OutputFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if configFileUsed != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		for _, key := range pathKeys {
			if fk.Exists(key) {
				if err := fk.Set(key, resolvePathRelativeTo(fk.String(key), projectRoot)); err != nil {
					return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
				}
			}
		}
		if err := k.Merge(fk); err != nil {
			return nil, fmt.Errorf("error merging config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables
	// Transform: LEAPGEN_OUTPUT_DIR -> output_dir; LEAPGEN_BACKENDS is comma separated.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "backends" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if cfg.ProjectRoot == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.ProjectRoot = cwd
		}
	}
	cfg.Backends = splitList(strings.Join(cfg.Backends, ","))

	currentConfig = &cfg
	return &cfg, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetConfigFileUsed returns the path of the loaded config file, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}
