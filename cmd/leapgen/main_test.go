// Package main provides tests for the leapgen CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgen/internal/cli"
	"github.com/leapstack-labs/leapgen/internal/cli/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "leapgen") {
		t.Errorf("version output should contain 'leapgen', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help command error = %v", err)
	}
	for _, expected := range []string{"generate", "order", "inspect", "verify", "backends", "init"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

// TestInitThenGenerate runs the documented quick start: init a project, then
// generate every backend the starter config enables.
func TestInitThenGenerate(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	configPath := filepath.Join(dir, "leapgen.yaml")
	output, err := execute(t, "--config", configPath, "generate")
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, output)
	}

	for _, rel := range []string{
		"output/django/models.py",
		"output/fastapi/app/main.py",
		"output/smoketest/test_api.py",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s to be generated: %v", rel, err)
		}
	}
}

func TestExampleProjectVerifies(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "init", dir, "--example"); err != nil {
		t.Fatalf("init error = %v", err)
	}

	configPath := filepath.Join(dir, "leapgen.yaml")
	output, err := execute(t, "--config", configPath, "verify", "-o", "markdown")
	if err != nil {
		t.Fatalf("verify error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "5 tables created and populated") {
		t.Errorf("verify output should report 5 tables, got: %s", output)
	}

	output, err = execute(t, "--config", configPath, "generate", "--dry-run", "-o", "markdown")
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "fastapi/app/endpoints/review.py") {
		t.Errorf("example project should use the package layout, got: %s", output)
	}
}
