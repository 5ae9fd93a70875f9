package emit

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// FuncMap returns the helpers available to every backend template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"pystr": PyString,
		"payload": func(t TableModel, updated bool) []Sample {
			return Payload(t, updated)
		},
		"last": func(i int, n int) bool {
			return i == n-1
		},
	}
}

// ParseTemplates parses the templates matching patterns in fsys with FuncMap
// installed. extra funcs override or extend the shared helpers.
func ParseTemplates(fsys fs.FS, extra template.FuncMap, patterns ...string) (*template.Template, error) {
	funcs := FuncMap()
	for k, v := range extra {
		funcs[k] = v
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// RenderJob maps one template execution to one artifact.
type RenderJob struct {
	Template string
	Path     string
	Data     any
}

// Run executes the jobs in order and returns one artifact per job.
func Run(tmpl *template.Template, jobs []RenderJob) ([]Artifact, error) {
	out := make([]Artifact, 0, len(jobs))
	for _, job := range jobs {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, job.Template, job.Data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", job.Template, err)
		}
		out = append(out, Artifact{Path: job.Path, Content: buf.Bytes()})
	}
	return out, nil
}

// PyString quotes s as a single-quoted Python string literal.
func PyString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
