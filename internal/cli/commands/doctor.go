package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapgen/internal/cli/config"
	"github.com/leapstack-labs/leapgen/internal/cli/output"
	intconfig "github.com/leapstack-labs/leapgen/internal/config"
	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
	checkSkip  = "skip"
)

// lookPath finds executables; tests replace it.
var lookPath = exec.LookPath

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run a project health check",
		Long: `Check a leapgen project before generating.

The doctor command runs every check and reports:
- Schema summary (tables, columns, foreign keys, dependency depth)
- Health checks grouped by category (Backends, Config, Environment, Schema)
- Health score (0-100)
- Actionable recommendations

Checks that depend on an earlier failure are skipped. The command fails
only when a check reports an error.`,
		Example: `  # Run health check
  leapgen doctor

  # Output as JSON
  leapgen doctor -o json`,
		RunE: runDoctor,
	}
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SchemaSummary `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SchemaSummary contains schema-level statistics.
type SchemaSummary struct {
	Tables         int `json:"tables"`
	Columns        int `json:"columns"`
	ForeignKeys    int `json:"foreign_keys"`
	SelfReferences int `json:"self_references"`
	Depth          int `json:"depth"`
	RootCount      int `json:"root_count"`
	LeafCount      int `json:"leaf_count"`
	EdgeCount      int `json:"edge_count"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error", "skip"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContextWithoutValidation(cmd)
	r := cmdCtx.Renderer

	out := diagnose(cmdCtx.Cfg, config.GetConfigFileUsed())
	cmdCtx.Logger.Debug("health check finished", "score", out.Score, "issues", out.IssueCount)

	var err error
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	if err != nil {
		return err
	}

	for _, check := range out.HealthChecks {
		if check.Status == checkError {
			return errors.New("health check found errors")
		}
	}
	return nil
}

// diagnose runs every check against cfg. configFile is the config file in
// use, empty when running on defaults.
func diagnose(cfg *config.Config, configFile string) *DoctorOutput {
	var checks []HealthCheck
	add := func(id, name, group, status string, details []string) {
		count := 0
		if status == checkWarn || status == checkError {
			count = max(len(details), 1)
		}
		checks = append(checks, HealthCheck{
			RuleID: id, Name: name, Group: group,
			Status: status, IssueCount: count, Details: details,
		})
	}

	if configFile == "" {
		add("CF01", "Config file found", "config", checkWarn,
			[]string{"no " + intconfig.ConfigFileName + " found; running on defaults"})
	} else {
		add("CF01", "Config file found", "config", checkPass, nil)
	}

	if err := cfg.Validate(); err != nil {
		add("CF02", "Configuration is valid", "config", checkError, errorDetails(err))
	} else {
		add("CF02", "Configuration is valid", "config", checkPass, nil)
	}

	var (
		catalog *schema.Catalog
		model   *emit.Model
		summary SchemaSummary
	)
	if err := checkInput(cfg.Input); err != nil {
		add("CF03", "Input file is readable", "config", checkError, errorDetails(err))
		add("SC01", "Schema is valid", "schema", checkSkip, []string{"input could not be read"})
	} else {
		add("CF03", "Input file is readable", "config", checkPass, nil)
		s, err := schema.ReadFile(cfg.Input)
		if err == nil {
			catalog, err = schema.Validate(s)
		}
		if err != nil {
			add("SC01", "Schema is valid", "schema", checkError, errorDetails(err))
		} else {
			add("SC01", "Schema is valid", "schema", checkPass, nil)
		}
	}

	if catalog == nil {
		add("SC02", "Dependency order resolves", "schema", checkSkip, []string{"schema is not valid"})
	} else {
		order, err := schema.Resolve(catalog)
		if err == nil {
			model, err = emit.BuildModel(catalog, order)
		}
		if err != nil {
			add("SC02", "Dependency order resolves", "schema", checkError, errorDetails(err))
		} else {
			add("SC02", "Dependency order resolves", "schema", checkPass, nil)
		}
		summary = summarize(catalog)

		status, details := statusFor(checkWarn, noStringColumn(catalog))
		add("SC03", "Every table has a string column", "schema", status, details)
		status, details = statusFor(checkWarn, mixedCaseNames(catalog))
		add("SC04", "Table names are lower case", "schema", status, details)
	}

	if model == nil {
		add("BK01", "Backends render", "backends", checkSkip, []string{"no resolved schema to render"})
	} else {
		status, details := statusFor(checkError, renderBackendsFor(cfg, model))
		add("BK01", "Backends render", "backends", status, details)
	}

	if _, err := lookPath("python3"); err != nil {
		add("EN01", "python3 on PATH", "environment", checkWarn,
			[]string{"python3 not found; generated backends and the smoke test need Python 3"})
	} else {
		add("EN01", "python3 on PATH", "environment", checkPass, nil)
	}

	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].RuleID < checks[j].RuleID
	})

	issues := 0
	for _, c := range checks {
		issues += c.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, summary.Tables),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// statusFor is pass when there are no details and status otherwise.
func statusFor(status string, details []string) (string, []string) {
	if len(details) == 0 {
		return checkPass, nil
	}
	return status, details
}

// errorDetails splits joined errors into one line each.
func errorDetails(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		details := make([]string, 0, len(errs))
		for _, e := range errs {
			details = append(details, e.Error())
		}
		return details
	}
	return []string{err.Error()}
}

func noStringColumn(c *schema.Catalog) []string {
	var details []string
	for _, e := range c.Entities {
		found := false
		for _, f := range e.Fields {
			if f.Kind == schema.KindString {
				found = true
				break
			}
		}
		if !found {
			details = append(details, fmt.Sprintf("table %s: the smoke test skips its update step", e.Name))
		}
	}
	return details
}

func mixedCaseNames(c *schema.Catalog) []string {
	var details []string
	for _, e := range c.Entities {
		if lower := strings.ToLower(e.Name); lower != e.Name {
			details = append(details, fmt.Sprintf("table %s is served at /%s/", e.Name, lower))
		}
	}
	return details
}

// renderBackendsFor renders every configured backend in memory and reports
// the ones that fail.
func renderBackendsFor(cfg *config.Config, m *emit.Model) []string {
	opts := emit.Options{BaseURL: cfg.BaseURL, FastAPILayout: cfg.FastAPILayout}
	seen := make(map[string]bool, len(cfg.Backends))
	var details []string
	for _, name := range cfg.Backends {
		if seen[name] {
			continue
		}
		seen[name] = true
		e, err := emit.New(name, opts)
		if err == nil {
			_, err = e.Emit(m)
		}
		if err == nil {
			continue
		}
		for _, d := range errorDetails(err) {
			if !strings.HasPrefix(d, name+": ") {
				d = name + ": " + d
			}
			details = append(details, d)
		}
	}
	return details
}

func summarize(c *schema.Catalog) SchemaSummary {
	summary := SchemaSummary{Tables: len(c.Entities)}
	for _, e := range c.Entities {
		summary.Columns += len(e.Fields)
		for _, f := range e.Fields {
			if f.IsForeignKey() {
				summary.ForeignKeys++
			}
		}
		if e.SelfReferencing() {
			summary.SelfReferences++
		}
	}

	graph, err := schema.Graph(c)
	if err != nil {
		return summary
	}
	summary.EdgeCount = graph.EdgeCount()
	summary.RootCount = len(graph.GetRoots())
	for _, id := range graph.NodeIDs() {
		if len(graph.GetChildren(id)) == 0 {
			summary.LeafCount++
		}
	}
	if levels, err := graph.GetExecutionLevels(); err == nil {
		summary.Depth = len(levels)
	}
	return summary
}

// calculateHealthScore computes a health score from 0-100.
// Errors count double, and with more tables each issue has less impact.
func calculateHealthScore(checks []HealthCheck, tableCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if tableCount > 10 {
		basePenalty = 3.0
	}
	if tableCount > 50 {
		basePenalty = 2.0
	}
	if tableCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case checkError:
			score -= float64(check.IssueCount) * basePenalty * 2
		case checkWarn:
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}

		rec := getRecommendation(check.RuleID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific rule.
func getRecommendation(ruleID string) string {
	switch ruleID {
	case "CF01":
		return "Run leapgen init to create " + intconfig.ConfigFileName
	case "CF02":
		return "Fix the configuration values reported above"
	case "CF03":
		return "Point input at the schema CSV with --input or the input key"
	case "SC01":
		return "Fix the schema CSV rows reported above"
	case "SC02":
		return "Break foreign key cycles; only a table referencing itself is allowed"
	case "SC03":
		return "Add a string column to tables the smoke test should update"
	case "SC04":
		return "Use lower-case table names so URLs and storage names match the CSV"
	case "BK01":
		return "Rename columns that clash with backend reserved names"
	case "EN01":
		return "Install Python 3 to run the generated backends and smoke test"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("leapgen Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header2.Render("Schema Summary"))
	r.Printf("   Tables: %d | Columns: %d | Foreign keys: %d\n", out.Summary.Tables, out.Summary.Columns, out.Summary.ForeignKeys)
	r.Printf("   Depth: %d levels | Roots: %d | Leaves: %d\n", out.Summary.Depth, out.Summary.RootCount, out.Summary.LeafCount)
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.Render("ok")
		switch check.Status {
		case checkWarn:
			icon = styles.Warning.Render("!")
		case checkError:
			icon = styles.StatusFailed.Render("x")
		case checkSkip:
			icon = styles.Muted.Render("-")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# leapgen Project Health Report")
	r.Println("")

	r.Println("## Schema Summary")
	r.Println("")
	r.Printf("- **Tables**: %d\n", out.Summary.Tables)
	r.Printf("- **Columns**: %d\n", out.Summary.Columns)
	r.Printf("- **Foreign Keys**: %d\n", out.Summary.ForeignKeys)
	r.Printf("- **Self References**: %d\n", out.Summary.SelfReferences)
	r.Printf("- **Depth**: %d levels\n", out.Summary.Depth)
	r.Printf("- **Root Tables**: %d\n", out.Summary.RootCount)
	r.Printf("- **Leaf Tables**: %d\n", out.Summary.LeafCount)
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}
