package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leapstack-labs/leapgen/internal/cli/output"
	"github.com/leapstack-labs/leapgen/internal/generate"
	"github.com/spf13/cobra"
)

// GenerateOutput is the JSON form of a generation run.
type GenerateOutput struct {
	Order  []string        `json:"order"`
	Files  []generate.File `json:"files"`
	DryRun bool            `json:"dry_run"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var dryRun, watch bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate backends from the schema CSV",
		Long: `Read the schema CSV, validate it, resolve the table dependency order
and render every selected backend into <output-dir>/<backend>/.

Nothing is written unless every backend rendered successfully.

Backends:
  django     Django REST framework models, viewsets and router
  fastapi    FastAPI app with SQLAlchemy models and pydantic schemas
  smoketest  Python script exercising the generated API over HTTP
  openapi    OpenAPI 3 document for the CRUD surface
  sql        SQLite CREATE TABLE statements`,
		Example: `  # Generate the default backends from ./model.csv
  leapgen generate

  # Generate FastAPI with one module per table, and the smoke test
  leapgen gen -b fastapi -b smoketest --fastapi-layout package

  # List what would be written
  leapgen generate --dry-run

  # Regenerate whenever model.csv changes
  leapgen generate --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, dryRun, watch)
		},
	}

	cmd.Flags().StringSliceP("backend", "b", nil, "Backend to generate (repeatable; default django,fastapi,smoketest)")
	cmd.Flags().String("fastapi-layout", "", "FastAPI endpoint layout (single|package)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render everything and list the files without writing them")
	cmd.Flags().BoolVar(&watch, "watch", false, "Regenerate whenever the input file changes")

	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	_ = cmd.RegisterFlagCompletionFunc("fastapi-layout", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"single", "package"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGenerate(cmd *cobra.Command, dryRun, watch bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if watch && dryRun {
		return fmt.Errorf("--watch and --dry-run cannot be combined")
	}

	g, err := cmdCtx.NewGenerator(dryRun)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	if !watch {
		res, err := g.Run(cmd.Context())
		if err != nil {
			return err
		}
		return renderGenerate(r, cmdCtx.Cfg.OutputDir, res)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return g.Watch(ctx, func(res *generate.Result, err error) {
		if err != nil {
			cmdCtx.Logger.Error("generation failed", "error", err)
			r.StatusLine("generate", output.StatusFailed, err.Error())
			return
		}
		if err := renderGenerate(r, cmdCtx.Cfg.OutputDir, res); err != nil {
			cmdCtx.Logger.Warn("failed to render result", "error", err)
		}
	})
}

func renderGenerate(r *output.Renderer, outputDir string, res *generate.Result) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(GenerateOutput{Order: res.Plan.Order, Files: res.Files, DryRun: res.DryRun})
	}

	title := "Generated"
	if res.DryRun {
		title = "Dry run"
	}
	r.Header(1, title)

	backends := 0
	last := ""
	for _, f := range res.Files {
		if f.Backend != last {
			if last != "" {
				r.Println("")
			}
			r.Header(2, f.Backend)
			last = f.Backend
			backends++
		}
		rel, err := filepath.Rel(outputDir, f.Path)
		if err != nil {
			rel = f.Path
		}
		r.StatusLine(filepath.ToSlash(rel), output.StatusSuccess, fmt.Sprintf("%d bytes", f.Bytes))
	}
	r.Println("")

	if res.DryRun {
		r.Muted(fmt.Sprintf("%d files for %d backends would be written to %s", len(res.Files), backends, outputDir))
		return nil
	}
	r.Success(fmt.Sprintf("%d files for %d backends written to %s", len(res.Files), backends, outputDir))
	return nil
}
