package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/leapstack-labs/leapgen/internal/emit/backends"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("input", "", "")
	flags.String("output-dir", "", "")
	flags.String("base-url", "", "")
	flags.StringSlice("backend", nil, "")
	flags.String("fastapi-layout", "", "")
	flags.Bool("verbose", false, "")
	flags.String("output", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "model.csv", cfg.Input)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	assert.Equal(t, []string{"django", "fastapi", "smoketest"}, cfg.Backends)
	assert.Equal(t, "single", cfg.FastAPILayout)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "leapgen.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`input: schema/model.csv
output_dir: build
base_url: https://api.example.com
backends: [openapi, sql]
fastapi_layout: package
`), 0o600))

	cfg, err := LoadConfig(configPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "schema", "model.csv"), cfg.Input, "file paths resolve against the config directory")
	assert.Equal(t, filepath.Join(dir, "build"), cfg.OutputDir)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, []string{"openapi", "sql"}, cfg.Backends)
	assert.Equal(t, "package", cfg.FastAPILayout)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, configPath, GetConfigFileUsed())
}

func TestLoadConfig_FindsFileUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	nested := filepath.Join(root, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "leapgen.yml"), []byte("base_url: http://localhost:9000\n"), 0o600))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	rootAbs, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, rootAbs, gotRoot)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "model.csv"), cfg.Input, "defaults sit next to the config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "leapgen.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`input: from_file.csv
base_url: http://file:8000
backends: [django]
`), 0o600))

	t.Run("env overrides file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPGEN_BASE_URL", "http://env:8000")
		t.Setenv("LEAPGEN_BACKENDS", "sql, openapi")

		cfg, err := LoadConfig(configPath, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://env:8000", cfg.BaseURL)
		assert.Equal(t, []string{"sql", "openapi"}, cfg.Backends)
		assert.Equal(t, filepath.Join(dir, "from_file.csv"), cfg.Input)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPGEN_BASE_URL", "http://env:8000")
		t.Setenv("LEAPGEN_INPUT", "from_env.csv")

		flags := testFlags()
		require.NoError(t, flags.Set("base-url", "http://flag:8000"))
		require.NoError(t, flags.Set("backend", "fastapi"))
		require.NoError(t, flags.Set("backend", "smoketest"))
		require.NoError(t, flags.Set("fastapi-layout", "package"))

		cfg, err := LoadConfig(configPath, flags)
		require.NoError(t, err)
		assert.Equal(t, "http://flag:8000", cfg.BaseURL)
		assert.Equal(t, []string{"fastapi", "smoketest"}, cfg.Backends)
		assert.Equal(t, "package", cfg.FastAPILayout)
		assert.Equal(t, "from_env.csv", cfg.Input, "env paths are left relative to the working directory")
	})

	t.Run("unset flags do not override", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig(configPath, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "http://file:8000", cfg.BaseURL)
		assert.Equal(t, []string{"django"}, cfg.Backends)
	})
}

func TestLoadConfig_BadFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "leapgen.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("input: [unclosed\n"), 0o600))

	_, err := LoadConfig(configPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "no input", mutate: func(c *Config) { c.Input = "" }, wantErr: []string{"input is required"}},
		{name: "no output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: []string{"output_dir is required"}},
		{name: "no backends", mutate: func(c *Config) { c.Backends = nil }, wantErr: []string{"at least one backend"}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backends = []string{"django", "rails"} }, wantErr: []string{`unknown backend "rails"`, "available: django"}},
		{name: "bad layout", mutate: func(c *Config) { c.FastAPILayout = "flat" }, wantErr: []string{`unknown fastapi_layout "flat"`}},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "localhost:8000" }, wantErr: []string{"must be an absolute http or https URL"}},
		{name: "ftp base url", mutate: func(c *Config) { c.BaseURL = "ftp://example.com" }, wantErr: []string{"must be an absolute http or https URL"}},
		{
			name:    "errors are collected",
			mutate:  func(c *Config) { c.Input = ""; c.BaseURL = "" },
			wantErr: []string{"input is required", "base_url is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestGeneratorConfig(t *testing.T) {
	cfg := Default()
	gc := cfg.GeneratorConfig()
	assert.Equal(t, cfg.Input, gc.Input)
	assert.Equal(t, cfg.Backends, gc.Backends)

	gc.Backends[0] = "changed"
	assert.Equal(t, "django", cfg.Backends[0], "the generator gets its own backend slice")
}

func TestGetLogger_Fallback(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
}
