package commands

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgen/internal/cli/config"
	"github.com/leapstack-labs/leapgen/internal/cli/testutil"
	"github.com/leapstack-labs/leapgen/internal/emit/emittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPython(t *testing.T, found bool) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) {
		if found {
			return "/usr/bin/python3", nil
		}
		return "", errors.New("not found")
	}
}

func findCheck(t *testing.T, out *DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.HealthChecks {
		if c.RuleID == id {
			return c
		}
	}
	t.Fatalf("no health check %s", id)
	return HealthCheck{}
}

func projectConfig(t *testing.T, csv string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))
	cfg := config.Default()
	cfg.Input = path
	cfg.OutputDir = filepath.Join(dir, "output")
	return cfg
}

func TestDiagnose_Healthy(t *testing.T) {
	stubPython(t, true)
	cfg := projectConfig(t, emittest.BlogCSV)

	out := diagnose(cfg, "leapgen.yaml")

	for _, c := range out.HealthChecks {
		assert.Equal(t, checkPass, c.Status, "%s: %v", c.RuleID, c.Details)
	}
	assert.Equal(t, 100, out.Score)
	assert.Zero(t, out.IssueCount)
	assert.Empty(t, out.Recommendations)
	assert.Equal(t, SchemaSummary{
		Tables: 2, Columns: 6, ForeignKeys: 1,
		Depth: 2, RootCount: 1, LeafCount: 1, EdgeCount: 1,
	}, out.Summary)

	groups := make([]string, 0, len(out.HealthChecks))
	for _, c := range out.HealthChecks {
		if len(groups) == 0 || groups[len(groups)-1] != c.Group {
			groups = append(groups, c.Group)
		}
	}
	assert.Equal(t, []string{"backends", "config", "environment", "schema"}, groups)
}

func TestDiagnose_Findings(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		configFile string
		python     bool
		setup      func(cfg *config.Config)
		want       map[string]string
		detail     map[string]string
	}{
		{
			name:       "no config file",
			csv:        emittest.BlogCSV,
			configFile: "",
			python:     true,
			want:       map[string]string{"CF01": checkWarn, "BK01": checkPass},
		},
		{
			name:       "missing input",
			configFile: "leapgen.yaml",
			python:     true,
			setup:      func(cfg *config.Config) { cfg.Input += ".missing" },
			want: map[string]string{
				"CF03": checkError, "SC01": checkSkip, "SC02": checkSkip, "BK01": checkSkip,
			},
		},
		{
			name:       "unknown column type",
			csv:        "table_name,column_name,column_type\nuser,id,primary_key\nuser,avatar,blob\n",
			configFile: "leapgen.yaml",
			python:     true,
			want:       map[string]string{"CF03": checkPass, "SC01": checkError, "SC02": checkSkip},
			detail:     map[string]string{"SC01": "blob"},
		},
		{
			name:       "foreign key cycle",
			csv:        "table_name,column_name,column_type\na,id,primary_key\na,b,foreign-b\nb,id,primary_key\nb,a,foreign-a\n",
			configFile: "leapgen.yaml",
			python:     true,
			want:       map[string]string{"SC01": checkPass, "SC02": checkError, "BK01": checkSkip},
		},
		{
			name:       "schema warnings",
			csv:        emittest.FullCSV,
			configFile: "leapgen.yaml",
			python:     true,
			want:       map[string]string{"SC03": checkWarn, "SC04": checkWarn, "BK01": checkPass},
			detail: map[string]string{
				"SC03": "table badge: the smoke test skips its update step",
				"SC04": "table Employee is served at /employee/",
			},
		},
		{
			name:       "reserved column name",
			csv:        "table_name,column_name,column_type\nuser,id,primary_key\nuser,objects,string\n",
			configFile: "leapgen.yaml",
			python:     true,
			want:       map[string]string{"SC02": checkPass, "BK01": checkError},
			detail:     map[string]string{"BK01": "django: "},
		},
		{
			name:       "invalid configuration",
			csv:        emittest.BlogCSV,
			configFile: "leapgen.yaml",
			python:     true,
			setup: func(cfg *config.Config) {
				cfg.Backends = []string{"rails"}
				cfg.BaseURL = "ftp://x"
			},
			want:   map[string]string{"CF02": checkError, "BK01": checkError},
			detail: map[string]string{"CF02": "rails"},
		},
		{
			name:       "python missing",
			csv:        emittest.BlogCSV,
			configFile: "leapgen.yaml",
			python:     false,
			want:       map[string]string{"EN01": checkWarn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubPython(t, tt.python)
			csv := tt.csv
			if csv == "" {
				csv = emittest.BlogCSV
			}
			cfg := projectConfig(t, csv)
			if tt.setup != nil {
				tt.setup(cfg)
			}

			out := diagnose(cfg, tt.configFile)

			for id, status := range tt.want {
				assert.Equal(t, status, findCheck(t, out, id).Status, id)
			}
			for id, text := range tt.detail {
				check := findCheck(t, out, id)
				require.NotEmpty(t, check.Details, id)
				found := false
				for _, d := range check.Details {
					if strings.Contains(d, text) {
						found = true
					}
				}
				assert.True(t, found, "%s details %v should mention %q", id, check.Details, text)
			}
			assert.Less(t, out.Score, 100)
			assert.NotEmpty(t, out.Recommendations)
		})
	}
}

func TestDiagnose_InvalidConfigSplitsErrors(t *testing.T) {
	stubPython(t, true)
	cfg := projectConfig(t, emittest.BlogCSV)
	cfg.Backends = []string{"rails"}
	cfg.BaseURL = "ftp://x"

	check := findCheck(t, diagnose(cfg, "leapgen.yaml"), "CF02")
	assert.Len(t, check.Details, 2)
	assert.Equal(t, 2, check.IssueCount)
}

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		tableCount int
		minScore   int
		maxScore   int
	}{
		{
			name:       "no checks returns 100",
			checks:     nil,
			tableCount: 10,
			minScore:   100,
			maxScore:   100,
		},
		{
			name: "passing and skipped checks return 100",
			checks: []HealthCheck{
				{RuleID: "SC01", Status: checkPass},
				{RuleID: "SC02", Status: checkSkip},
			},
			tableCount: 10,
			minScore:   100,
			maxScore:   100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{RuleID: "SC03", Status: checkWarn, IssueCount: 2},
			},
			tableCount: 10,
			minScore:   90,
			maxScore:   90,
		},
		{
			name: "errors count double",
			checks: []HealthCheck{
				{RuleID: "SC01", Status: checkError, IssueCount: 2},
			},
			tableCount: 10,
			minScore:   80,
			maxScore:   80,
		},
		{
			name: "more tables means less impact per issue",
			checks: []HealthCheck{
				{RuleID: "SC04", Status: checkWarn, IssueCount: 5},
			},
			tableCount: 100,
			minScore:   90,
			maxScore:   90,
		},
		{
			name: "many issues clamp to 0",
			checks: []HealthCheck{
				{RuleID: "SC01", Status: checkError, IssueCount: 20},
			},
			tableCount: 5,
			minScore:   0,
			maxScore:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := calculateHealthScore(tt.checks, tt.tableCount)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	for _, id := range []string{"CF01", "CF02", "CF03", "SC01", "SC02", "SC03", "SC04", "BK01", "EN01"} {
		assert.NotEmpty(t, getRecommendation(id), id)
	}
	assert.Empty(t, getRecommendation("UNKNOWN"))
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{RuleID: "CF01", Status: checkWarn, IssueCount: 1},
		{RuleID: "CF02", Status: checkError, IssueCount: 1},
		{RuleID: "CF03", Status: checkError, IssueCount: 1},
		{RuleID: "SC01", Status: checkPass},
		{RuleID: "SC03", Status: checkWarn, IssueCount: 3},
		{RuleID: "SC04", Status: checkWarn, IssueCount: 1},
		{RuleID: "EN01", Status: checkWarn, IssueCount: 1},
		{RuleID: "EN01", Status: checkWarn, IssueCount: 1},
	}

	recs := generateRecommendations(checks)
	assert.Len(t, recs, 5, "limited to five")
	assert.Equal(t, getRecommendation("CF01"), recs[0])
	assert.NotContains(t, recs, getRecommendation("SC01"))
}

func TestDoctor_JSON(t *testing.T) {
	stubPython(t, true)
	dir := testutil.SetupTestProjectWith(t, emittest.BlogCSV, "output: json\n")
	loadProject(t, dir)

	out, err := execute(t, NewDoctorCommand())
	require.NoError(t, err)

	var report DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, 2, report.Summary.Tables)
	assert.Len(t, report.HealthChecks, 9)
}

func TestDoctor_FailsOnErrors(t *testing.T) {
	stubPython(t, true)
	dir := testutil.SetupTestProjectWith(t, "table_name,column_name,column_type\nuser,id,blob\n", "output: markdown\n")
	loadProject(t, dir)

	out, err := execute(t, NewDoctorCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check found errors")
	assert.Contains(t, out, "# leapgen Project Health Report")
	assert.Contains(t, out, "- **[ERROR]** SC01: Schema is valid")
	assert.Contains(t, out, "- **[SKIP]** SC02: Dependency order resolves")
	assert.Contains(t, out, "## Recommendations")
}

func TestRenderDoctorText(t *testing.T) {
	stubPython(t, false)
	tr := testutil.NewTestRendererText()
	renderDoctorText(tr.Renderer, diagnose(projectConfig(t, emittest.FullCSV), "leapgen.yaml"))

	out := tr.Output()
	assert.Contains(t, out, "leapgen Project Health Report")
	assert.Contains(t, out, "Tables: 3 | Columns: 11 | Foreign keys: 3")
	assert.Contains(t, out, "Environment")
	assert.Contains(t, out, "EN01: python3 on PATH (1 issues)")
	assert.Contains(t, out, "Health Score:")
}
