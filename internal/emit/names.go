package emit

import (
	"errors"
	"fmt"
	"slices"
)

// PythonKeywords are the reserved words of Python 3. They cannot be used as
// identifiers, module names included.
var PythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

// IsPythonKeyword reports whether name is a Python keyword.
func IsPythonKeyword(name string) bool { return slices.Contains(PythonKeywords, name) }

// Reserved lists names a backend's generated Python already binds, so tables
// and columns must avoid them.
type Reserved struct {
	// Symbols are module-level names a table symbol must not take.
	Symbols []string
	// Columns are class-level names a column must not take.
	Columns []string
	// Column optionally rejects further column names, returning a reason.
	Column func(name string) string
}

// NameError reports a table or column name a backend cannot render.
type NameError struct {
	Backend string
	Table   string
	Column  string
	Reason  string
}

func (e *NameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: table %q column %q: %s", e.Backend, e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: table %q: %s", e.Backend, e.Table, e.Reason)
}

// CheckPythonNames reports every table symbol or column name that would not
// survive as a Python identifier in the backend's output.
func CheckPythonNames(backend string, m *Model, r Reserved) error {
	var errs []error
	for _, t := range m.Tables {
		if IsPythonKeyword(t.Symbol) {
			errs = append(errs, &NameError{
				Backend: backend,
				Table:   t.Name,
				Reason:  fmt.Sprintf("class name %s is a Python keyword", t.Symbol),
			})
		}
		if slices.Contains(r.Symbols, t.Symbol) {
			errs = append(errs, &NameError{
				Backend: backend,
				Table:   t.Name,
				Reason:  fmt.Sprintf("class name %s is already used by the generated code", t.Symbol),
			})
		}
		for _, f := range t.Fields {
			reason := ""
			switch {
			case IsPythonKeyword(f.Name):
				reason = "column name is a Python keyword"
			case slices.Contains(r.Columns, f.Name):
				reason = "column name is already used by the generated code"
			case r.Column != nil:
				reason = r.Column(f.Name)
			}
			if reason != "" {
				errs = append(errs, &NameError{Backend: backend, Table: t.Name, Column: f.Name, Reason: reason})
			}
		}
	}
	return errors.Join(errs...)
}
