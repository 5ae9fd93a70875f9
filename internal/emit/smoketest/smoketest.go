// Package smoketest emits a Python script that drives the generated CRUD
// endpoints over HTTP, creating one row per table in dependency order.
package smoketest

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leapstack-labs/leapgen/internal/emit"
)

// Name is the backend name used in configuration.
const Name = "smoketest"

// DefaultBaseURL is where the script looks for the API when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

//go:embed templates/*.tmpl
var templateFS embed.FS

func init() {
	emit.Register(Name, func(opts emit.Options) (emit.Emitter, error) {
		return New(opts.BaseURL)
	})
}

// Emitter renders the smoke-test script.
type Emitter struct {
	tmpl    *template.Template
	baseURL string
}

// New parses the embedded templates. baseURL is written into the script
// without a trailing slash.
func New(baseURL string) (*Emitter, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tmpl, err := emit.ParseTemplates(templateFS, template.FuncMap{
		"value":       Value,
		"firstString": firstString,
	}, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Emitter{tmpl: tmpl, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Name implements emit.Emitter.
func (e *Emitter) Name() string { return Name }

// Description implements emit.Emitter.
func (e *Emitter) Description() string {
	return "Python requests script exercising list, create, fetch and update against " + e.baseURL
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(m *emit.Model) ([]emit.Artifact, error) {
	data := struct {
		BaseURL string
		Tables  []emit.TableModel
	}{BaseURL: e.baseURL, Tables: m.Tables}

	return emit.Run(e.tmpl, []emit.RenderJob{
		{Template: "test_api.py.tmpl", Path: "test_api.py", Data: data},
		{Template: "requirements.txt.tmpl", Path: "requirements.txt", Data: data},
	})
}

// Value returns the Python expression for a synthesized sample.
func Value(s emit.Sample) (string, error) {
	switch s.Kind {
	case emit.SampleString:
		return emit.PyString(s.Literal), nil
	case emit.SampleInt:
		return s.Literal, nil
	case emit.SampleToday:
		return "str(date.today())", nil
	case emit.SampleCreatedID:
		return "created_ids[" + emit.PyString(s.Ref) + "]", nil
	case emit.SampleNull:
		return "None", nil
	default:
		return "", fmt.Errorf("field %s: unknown sample kind %d", s.Field, s.Kind)
	}
}

func firstString(t emit.TableModel) string {
	f, _ := t.FirstString()
	return f.Name
}
