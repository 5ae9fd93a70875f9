package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfigFile(dir))

	alt := filepath.Join(dir, ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(alt, []byte("input: a.csv\n"), 0o600))
	assert.Equal(t, alt, FindConfigFile(dir))

	main := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(main, []byte("input: b.csv\n"), 0o600))
	assert.Equal(t, main, FindConfigFile(dir), "leapgen.yaml takes precedence")
}

func TestFindConfigFile_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFileName), 0o750))
	assert.Empty(t, FindConfigFile(dir))
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	assert.Empty(t, FindProjectRoot(nested))

	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}\n"), 0o600))
	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, root, FindProjectRoot(root))
}

func TestDefaultBackends(t *testing.T) {
	b := DefaultBackends()
	assert.Equal(t, []string{"django", "fastapi", "smoketest"}, b)

	b[0] = "changed"
	assert.Equal(t, "django", DefaultBackends()[0], "each call returns a fresh slice")
}
