// Package django emits Django models, Django REST framework serializers and
// viewsets, and router wiring.
package django

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
)

// Name is the backend name used in configuration.
const Name = "django"

//go:embed templates/*.tmpl
var templateFS embed.FS

func init() {
	emit.Register(Name, func(emit.Options) (emit.Emitter, error) {
		return New()
	})
}

// Emitter renders the Django backend.
type Emitter struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Emitter, error) {
	tmpl, err := emit.ParseTemplates(templateFS, template.FuncMap{
		"djangoField": fieldDecl,
	}, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Emitter{tmpl: tmpl}, nil
}

// Name implements emit.Emitter.
func (e *Emitter) Name() string { return Name }

// Description implements emit.Emitter.
func (e *Emitter) Description() string {
	return "Django models, REST framework serializers and viewsets, router URLs"
}

var reserved = emit.Reserved{
	Columns: []string{"models", "objects", "pk"},
	Column: func(name string) string {
		if strings.HasSuffix(name, "_") || strings.Contains(name, "__") {
			return "Django field names cannot end with an underscore or contain a double underscore"
		}
		return ""
	},
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(m *emit.Model) ([]emit.Artifact, error) {
	if err := emit.CheckPythonNames(Name, m, reserved); err != nil {
		return nil, err
	}
	return emit.Run(e.tmpl, []emit.RenderJob{
		{Template: "models.py.tmpl", Path: "models.py", Data: m},
		{Template: "views.py.tmpl", Path: "views.py", Data: m},
		{Template: "urls.py.tmpl", Path: "urls.py", Data: m},
		{Template: "requirements.txt.tmpl", Path: "requirements.txt", Data: m},
	})
}

// fieldDecl returns the model field declaration for one column. Tables with
// several foreign keys to the same model get a related_name per field so the
// reverse accessors do not clash.
func fieldDecl(t emit.TableModel, f emit.FieldModel) (string, error) {
	switch f.Kind {
	case schema.KindPrimaryKey:
		return "models.AutoField(primary_key=True)", nil
	case schema.KindString:
		return "models.CharField(max_length=255)", nil
	case schema.KindInt:
		return "models.IntegerField()", nil
	case schema.KindDate:
		return "models.DateField()", nil
	case schema.KindForeignKey:
		decl := fmt.Sprintf("models.ForeignKey(%s, on_delete=models.CASCADE, null=True", emit.PyString(f.RefSymbol))
		if refCount(t, f.Ref) > 1 {
			decl += ", related_name=" + emit.PyString(t.Path+"_"+f.Name)
		}
		return decl + ")", nil
	default:
		return "", fmt.Errorf("table %s column %s: no Django field for kind %s", t.Name, f.Name, f.Kind)
	}
}

func refCount(t emit.TableModel, ref string) int {
	n := 0
	for _, f := range t.Fields {
		if f.IsForeignKey() && f.Ref == ref {
			n++
		}
	}
	return n
}
