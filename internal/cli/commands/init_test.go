package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   string
		wantFiles []string
		wantOut   []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"leapgen.yaml", "model.csv", ".gitignore"},
			wantOut:   []string{"ok leapgen.yaml", "leapgen project initialized"},
		},
		{
			name:      "init example",
			args:      []string{"--example"},
			wantFiles: []string{"leapgen.yaml", "model.csv", ".gitignore"},
		},
		{
			name: "existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapgen.yml"), []byte("existing"), 0o600))
			},
			wantErr: "already exists",
		},
		{
			name: "existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapgen.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"leapgen.yaml", "model.csv"},
		},
		{
			name: "existing schema is kept",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "model.csv"), []byte("mine"), 0o600))
			},
			wantFiles: []string{"leapgen.yaml"},
			wantOut:   []string{"skip model.csv  already exists"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{dir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(dir, f))
				assert.NoError(t, err, "expected %s to exist", f)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestInit_KeepsUserSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "model.csv")
	require.NoError(t, os.WriteFile(schemaPath, []byte("mine"), 0o600))

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))
}

func TestInit_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "project")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(dir, "leapgen.yaml"))
}

func TestListTemplateFiles(t *testing.T) {
	for _, name := range []string{templateMinimal, templateExample} {
		files, err := listTemplateFiles(name)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{".gitignore", "leapgen.yaml", "model.csv"}, files, name)
	}
}
