package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapgen/internal/cli/config"
	"github.com/leapstack-labs/leapgen/internal/cli/output"
	"github.com/leapstack-labs/leapgen/internal/generate"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context for a command and validates the
// configuration it runs with.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutValidation(cmd)
	if err := cmdCtx.Cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cmdCtx, nil
}

// NewCommandContextWithoutValidation builds the context without checking the
// configuration. Used by commands that work before a project exists.
func NewCommandContextWithoutValidation(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewGenerator builds a generator from the command configuration.
func (c *CommandContext) NewGenerator(dryRun bool) (*generate.Generator, error) {
	gc := c.Cfg.GeneratorConfig()
	gc.DryRun = dryRun
	gc.Logger = c.Logger
	return generate.New(gc)
}

// LoadPlan reads, validates and orders the configured input.
func (c *CommandContext) LoadPlan() (*generate.Plan, error) {
	g, err := c.NewGenerator(true)
	if err != nil {
		return nil, err
	}
	return g.Load()
}

// getConfig returns the loaded configuration, or the defaults when a command
// runs without the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
