package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapgen/internal/cli/output"
	intconfig "github.com/leapstack-labs/leapgen/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leapgen project",
		Long: `Initialize a new leapgen project with a configuration file and a sample schema.

This creates:
  - leapgen.yaml configuration file
  - model.csv schema with two related tables
  - .gitignore excluding generated output

Use --example for a larger schema with dates, several foreign keys
and a self-referencing table, generating every backend.`,
		Example: `  # Initialize in current directory
  leapgen init

  # Initialize a new directory with the larger example
  leapgen init my-api --example

  # Overwrite existing files
  leapgen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := NewCommandContextWithoutValidation(cmd).Renderer

			name := templateMinimal
			if example {
				name = templateExample
			}
			return runInit(r, dir, name, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create the larger example schema")

	return cmd
}

func runInit(r *output.Renderer, dir, templateName string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if existing := intconfig.FindConfigFile(dir); existing != "" && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", existing)
	}

	written, skipped, err := copyTemplate(templateName, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	for _, f := range written {
		r.StatusLine(f, output.StatusSuccess, "")
	}
	for _, f := range skipped {
		r.StatusLine(f, output.StatusSkipped, "already exists")
	}

	r.Println("")
	r.Success("leapgen project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Describe your tables in model.csv")
	r.Println("  2. Run 'leapgen order' to check the dependency order")
	r.Println("  3. Run 'leapgen generate' to write the backends to output/")

	return nil
}
