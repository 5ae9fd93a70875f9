package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapgen/internal/cli/output"
	"github.com/leapstack-labs/leapgen/internal/schema"
	"github.com/spf13/cobra"
)

// GraphQuerier provides read-only access to the dependency graph.
type GraphQuerier interface {
	GetParents(string) []string
	GetChildren(string) []string
	NodeCount() int
	EdgeCount() int
}

// OrderOutput is the JSON form of the order command.
type OrderOutput struct {
	Order       []string     `json:"order"`
	Levels      []OrderLevel `json:"levels"`
	TotalTables int          `json:"total_tables"`
	TotalEdges  int          `json:"total_edges"`
}

// OrderLevel is one dependency level.
type OrderLevel struct {
	Level  int         `json:"level"`
	Tables []OrderNode `json:"tables"`
}

// OrderNode is one table and its neighbours.
type OrderNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on"`
	UsedBy    []string `json:"used_by"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Show the table dependency order",
		Long: `Display the order tables are generated in, and the dependency levels.

A table always comes after every table it references with a foreign key.
Tables on the same level do not depend on each other.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the order
  leapgen order

  # Order of another schema file
  leapgen order -i schema/model.csv

  # Output as JSON
  leapgen order --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOrder(cmd)
		},
	}
}

func runOrder(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	plan, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	graph, err := schema.Graph(plan.Catalog)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return orderJSON(r, graph, plan.Order, plan.Levels)
	case output.ModeMarkdown:
		return orderMarkdown(r, graph, plan.Order, plan.Levels)
	default:
		return orderText(r, graph, plan.Order, plan.Levels)
	}
}

// orderText outputs the order in styled text format.
func orderText(r *output.Renderer, graph GraphQuerier, order []string, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Generation Order")
	for i, name := range order {
		r.Printf("  %2d. %s\n", i+1, styles.TableName.Render(name))
	}
	r.Println("")

	r.Header(2, "Dependency Levels")
	for i, level := range levels {
		r.Println(styles.Bold.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			r.Printf("  %s\n", styles.TableName.Render(name))
			if deps := graph.GetParents(name); len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if children := graph.GetChildren(name); len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d tables, %d dependencies", graph.NodeCount(), graph.EdgeCount())))
	return nil
}

// orderMarkdown outputs the order in markdown format.
func orderMarkdown(r *output.Renderer, graph GraphQuerier, order []string, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Generation Order"))
	r.Println("")
	for i, name := range order {
		r.Printf("%d. %s\n", i+1, name)
	}
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (No dependencies)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			r.Printf("- %s\n", name)
			if deps := graph.GetParents(name); len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if children := graph.GetChildren(name); len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Tables", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", graph.EdgeCount())))
	return nil
}

// orderJSON outputs the order in JSON format.
func orderJSON(r *output.Renderer, graph GraphQuerier, order []string, levels [][]string) error {
	out := OrderOutput{
		Order:       order,
		Levels:      make([]OrderLevel, 0, len(levels)),
		TotalTables: graph.NodeCount(),
		TotalEdges:  graph.EdgeCount(),
	}

	for i, level := range levels {
		ol := OrderLevel{Level: i, Tables: make([]OrderNode, 0, len(level))}
		for _, name := range level {
			ol.Tables = append(ol.Tables, OrderNode{
				Name:      name,
				DependsOn: nonNil(graph.GetParents(name)),
				UsedBy:    nonNil(graph.GetChildren(name)),
			})
		}
		out.Levels = append(out.Levels, ol)
	}

	return r.JSON(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
