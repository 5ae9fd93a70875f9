package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapgen/internal/cli/output"
	"github.com/leapstack-labs/leapgen/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InspectOutput is the JSON and YAML form of the inspect command.
type InspectOutput struct {
	Source string           `json:"source" yaml:"source"`
	Order  []string         `json:"order" yaml:"order"`
	Tables []*schema.Entity `json:"tables" yaml:"tables"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the parsed and validated schema",
		Long: `Parse and validate the schema CSV and print every table with its
columns and resolved types, in generation order.

Use --yaml to dump the schema as YAML instead.`,
		Example: `  leapgen inspect
  leapgen inspect --output json
  leapgen inspect --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			plan, err := cmdCtx.LoadPlan()
			if err != nil {
				return err
			}

			out := InspectOutput{Source: plan.Catalog.Source, Order: plan.Order}
			for _, name := range plan.Order {
				e, _ := plan.Catalog.Entity(name)
				out.Tables = append(out.Tables, e)
			}

			r := cmdCtx.Renderer
			switch {
			case asYAML:
				enc := yaml.NewEncoder(r.Writer())
				enc.SetIndent(2)
				if err := enc.Encode(out); err != nil {
					return err
				}
				return enc.Close()
			case r.EffectiveMode() == output.ModeJSON:
				return r.JSON(out)
			default:
				inspectTables(r, out)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the schema as YAML")
	return cmd
}

func inspectTables(r *output.Renderer, out InspectOutput) {
	r.Header(1, fmt.Sprintf("Schema: %s", out.Source))

	for _, e := range out.Tables {
		r.Header(2, e.Name)

		rows := make([][]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			ref := ""
			if f.IsForeignKey() {
				ref = f.Ref
				if f.Ref == e.Name {
					ref += " (self)"
				}
			}
			rows = append(rows, []string{f.Name, f.Kind.String(), ref})
		}
		r.Table([]string{"Column", "Type", "References"}, rows)
		r.Println("")
	}

	r.Println(output.FormatKeyValue("Tables", fmt.Sprintf("%d", len(out.Tables))))
}
