// Package fastapi emits a FastAPI application backed by SQLAlchemy models and
// pydantic schemas. The application is a Python package named app so it does
// not shadow the fastapi distribution when served from the output directory.
package fastapi

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
)

// Name is the backend name used in configuration.
const Name = "fastapi"

// Layouts.
const (
	// LayoutSingle puts every router in app/endpoints.py.
	LayoutSingle = "single"
	// LayoutPackage puts one module per table under app/endpoints/.
	LayoutPackage = "package"
)

// Layouts returns the supported layout names.
func Layouts() []string { return []string{LayoutSingle, LayoutPackage} }

//go:embed templates/*.tmpl
var templateFS embed.FS

func init() {
	emit.Register(Name, func(opts emit.Options) (emit.Emitter, error) {
		return New(opts.FastAPILayout)
	})
}

// Emitter renders the FastAPI backend.
type Emitter struct {
	tmpl   *template.Template
	layout string
}

// New parses the embedded templates for the given layout. An empty layout
// means LayoutSingle.
func New(layout string) (*Emitter, error) {
	switch layout {
	case "":
		layout = LayoutSingle
	case LayoutSingle, LayoutPackage:
	default:
		return nil, fmt.Errorf("unknown fastapi layout %q (expected %s)", layout, strings.Join(Layouts(), " or "))
	}
	tmpl, err := emit.ParseTemplates(templateFS, template.FuncMap{
		"column":  columnDecl,
		"pyField": fieldDecl,
	}, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Emitter{tmpl: tmpl, layout: layout}, nil
}

// Name implements emit.Emitter.
func (e *Emitter) Name() string { return Name }

// Description implements emit.Emitter.
func (e *Emitter) Description() string {
	return "FastAPI routers with SQLAlchemy models and pydantic schemas (" + e.layout + " layout)"
}

// Layout returns the layout the emitter renders.
func (e *Emitter) Layout() string { return e.layout }

// router is the data behind one table's endpoint module.
type router struct {
	emit.TableModel
	// Router is the APIRouter variable inside the endpoint module.
	Router string
}

var reserved = emit.Reserved{
	Symbols: []string{"Base", "Column", "Date", "Integer", "String", "Optional"},
	Columns: []string{
		"Column", "Date", "ForeignKey", "Integer", "String",
		"datetime", "Optional", "BaseModel", "ConfigDict",
		"metadata", "registry", "model_config",
	},
	Column: func(name string) string {
		if strings.HasPrefix(name, "_") {
			return "pydantic treats names with a leading underscore as private attributes"
		}
		return ""
	},
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(m *emit.Model) ([]emit.Artifact, error) {
	if err := emit.CheckPythonNames(Name, m, reserved); err != nil {
		return nil, err
	}

	jobs := []emit.RenderJob{
		{Template: "database.py.tmpl", Path: "app/database.py", Data: m},
		{Template: "models.py.tmpl", Path: "app/models.py", Data: m},
		{Template: "schemas.py.tmpl", Path: "app/schemas.py", Data: m},
	}

	routers := make([]router, 0, len(m.Tables))
	switch e.layout {
	case LayoutPackage:
		for _, t := range m.Tables {
			if strings.HasPrefix(t.Path, "__") {
				return nil, &emit.NameError{Backend: Name, Table: t.Name, Reason: "module name would clash with Python's dunder modules"}
			}
			if emit.IsPythonKeyword(t.Path) {
				return nil, &emit.NameError{Backend: Name, Table: t.Name, Reason: fmt.Sprintf("module name %s is a Python keyword", t.Path)}
			}
			routers = append(routers, router{TableModel: t, Router: "router"})
		}
		jobs = append(jobs, emit.RenderJob{Template: "endpoints_init.py.tmpl", Path: "app/endpoints/__init__.py", Data: routers})
		for _, r := range routers {
			jobs = append(jobs, emit.RenderJob{Template: "endpoint.py.tmpl", Path: "app/endpoints/" + r.Path + ".py", Data: r})
		}
	default:
		for _, t := range m.Tables {
			routers = append(routers, router{TableModel: t, Router: t.Path + "_router"})
		}
		jobs = append(jobs, emit.RenderJob{Template: "endpoints.py.tmpl", Path: "app/endpoints.py", Data: routers})
	}

	jobs = append(jobs,
		emit.RenderJob{Template: "main.py.tmpl", Path: "app/main.py", Data: m},
		emit.RenderJob{Template: "requirements.txt.tmpl", Path: "requirements.txt", Data: m},
	)

	artifacts, err := emit.Run(e.tmpl, jobs)
	if err != nil {
		return nil, err
	}
	return append([]emit.Artifact{{Path: "app/__init__.py", Content: []byte{}}}, artifacts...), nil
}

// columnDecl returns the SQLAlchemy column for one field.
func columnDecl(f emit.FieldModel) (string, error) {
	switch f.Kind {
	case schema.KindPrimaryKey:
		return "Column(Integer, primary_key=True, index=True)", nil
	case schema.KindString:
		return "Column(String(255), index=True)", nil
	case schema.KindInt:
		return "Column(Integer)", nil
	case schema.KindDate:
		return "Column(Date)", nil
	case schema.KindForeignKey:
		return fmt.Sprintf("Column(Integer, ForeignKey(%s), nullable=True)", emit.PyString(f.RefPath+"."+f.RefPrimaryKey)), nil
	default:
		return "", fmt.Errorf("column %s: no SQLAlchemy type for kind %s", f.Name, f.Kind)
	}
}

// fieldDecl returns the pydantic field annotation for one field.
func fieldDecl(f emit.FieldModel) (string, error) {
	switch f.Kind {
	case schema.KindPrimaryKey, schema.KindInt:
		return f.Name + ": int", nil
	case schema.KindString:
		return f.Name + ": str", nil
	case schema.KindDate:
		return f.Name + ": datetime.date", nil
	case schema.KindForeignKey:
		return f.Name + ": Optional[int] = None", nil
	default:
		return "", fmt.Errorf("column %s: no pydantic type for kind %s", f.Name, f.Kind)
	}
}
