// Package openapi emits an OpenAPI 3 document describing the CRUD surface
// the FastAPI backend serves.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
)

// Name is the backend name used in configuration.
const Name = "openapi"

const (
	version          = "3.0.3"
	componentsPrefix = "#/components/schemas/"
	notFoundSchema   = "NotFound"
	deletedSchema    = "Deleted"
)

func init() {
	emit.Register(Name, func(opts emit.Options) (emit.Emitter, error) {
		return New(opts.BaseURL), nil
	})
}

// Emitter builds openapi.json.
type Emitter struct {
	baseURL string
}

// New returns an emitter that lists baseURL as the document's server, if set.
func New(baseURL string) *Emitter {
	return &Emitter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements emit.Emitter.
func (e *Emitter) Name() string { return Name }

// Description implements emit.Emitter.
func (e *Emitter) Description() string {
	return "OpenAPI 3 document for the generated CRUD endpoints"
}

// Emit implements emit.Emitter. The document is validated before it is
// returned.
func (e *Emitter) Emit(m *emit.Model) ([]emit.Artifact, error) {
	doc, err := e.Document(m)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return []emit.Artifact{{Path: "openapi.json", Content: append(data, '\n')}}, nil
}

// Document builds and validates the OpenAPI document for m.
func (e *Emitter) Document(m *emit.Model) (*openapi3.T, error) {
	title := "Generated API"
	if m.Source != "" {
		title = "API for " + filepath.Base(m.Source)
	}

	doc := &openapi3.T{
		OpenAPI:    version,
		Info:       &openapi3.Info{Title: title, Version: "1.0.0"},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: make(openapi3.Schemas)},
	}
	if e.baseURL != "" {
		doc.Servers = openapi3.Servers{{URL: e.baseURL}}
	}

	notFound := openapi3.NewObjectSchema().WithProperty("detail", openapi3.NewStringSchema())
	notFound.Required = []string{"detail"}
	deleted := openapi3.NewObjectSchema().WithProperty("message", openapi3.NewStringSchema())
	deleted.Required = []string{"message"}
	doc.Components.Schemas[notFoundSchema] = openapi3.NewSchemaRef("", notFound)
	doc.Components.Schemas[deletedSchema] = openapi3.NewSchemaRef("", deleted)

	for _, t := range m.Tables {
		create, read, err := tableSchemas(t)
		if err != nil {
			return nil, err
		}
		doc.Components.Schemas[t.Symbol+"Create"] = openapi3.NewSchemaRef("", create)
		doc.Components.Schemas[t.Symbol] = openapi3.NewSchemaRef("", read)
		addOperations(doc, t)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi document invalid: %w", err)
	}
	return doc, nil
}

// tableSchemas returns the creation schema (no primary key) and the read
// schema (with the primary key) for one table.
func tableSchemas(t emit.TableModel) (create, read *openapi3.Schema, err error) {
	create = openapi3.NewObjectSchema()
	read = openapi3.NewObjectSchema().
		WithProperty(t.PrimaryKey, openapi3.NewIntegerSchema())
	read.Required = []string{t.PrimaryKey}

	for _, f := range t.DataFields() {
		s, err := fieldSchema(f)
		if err != nil {
			return nil, nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		create.WithProperty(f.Name, s)
		read.WithProperty(f.Name, s)
		if !f.IsForeignKey() {
			create.Required = append(create.Required, f.Name)
			read.Required = append(read.Required, f.Name)
		}
	}
	return create, read, nil
}

func fieldSchema(f emit.FieldModel) (*openapi3.Schema, error) {
	switch f.Kind {
	case schema.KindString:
		return openapi3.NewStringSchema().WithMaxLength(255), nil
	case schema.KindInt:
		return openapi3.NewIntegerSchema(), nil
	case schema.KindDate:
		return openapi3.NewStringSchema().WithFormat("date"), nil
	case schema.KindForeignKey:
		s := openapi3.NewIntegerSchema().WithNullable()
		s.Description = fmt.Sprintf("%s.%s", f.RefPath, f.RefPrimaryKey)
		return s, nil
	default:
		return nil, fmt.Errorf("column %s: no OpenAPI type for kind %s", f.Name, f.Kind)
	}
}

func addOperations(doc *openapi3.T, t emit.TableModel) {
	collection := "/" + t.Path + "/"
	item := "/" + t.Path + "/{item_id}"
	readRef := ref(doc, t.Symbol)
	createRef := ref(doc, t.Symbol+"Create")
	tags := []string{t.Path}

	list := openapi3.NewArraySchema()
	list.Items = readRef

	doc.AddOperation(collection, http.MethodGet, &openapi3.Operation{
		OperationID: "list_" + t.Path,
		Summary:     "List " + t.Path,
		Tags:        tags,
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewQueryParameter("skip").WithSchema(openapi3.NewIntegerSchema().WithDefault(0))},
			{Value: openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewIntegerSchema().WithDefault(10))},
		},
		Responses: responses(
			response(http.StatusOK, "Successful Response", openapi3.NewSchemaRef("", list)),
		),
	})

	doc.AddOperation(collection, http.MethodPost, &openapi3.Operation{
		OperationID: "create_" + t.Path,
		Summary:     "Create " + t.Path,
		Tags:        tags,
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(createRef)},
		Responses: responses(
			response(http.StatusCreated, "Created", readRef),
		),
	})

	doc.AddOperation(item, http.MethodGet, &openapi3.Operation{
		OperationID: "read_" + t.Path,
		Summary:     "Fetch one " + t.Path,
		Tags:        tags,
		Parameters:  openapi3.Parameters{itemParam()},
		Responses: responses(
			response(http.StatusOK, "Successful Response", readRef),
			response(http.StatusNotFound, t.Symbol+" not found", ref(doc, notFoundSchema)),
		),
	})

	doc.AddOperation(item, http.MethodPut, &openapi3.Operation{
		OperationID: "update_" + t.Path,
		Summary:     "Replace one " + t.Path,
		Tags:        tags,
		Parameters:  openapi3.Parameters{itemParam()},
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(createRef)},
		Responses: responses(
			response(http.StatusOK, "Successful Response", readRef),
			response(http.StatusNotFound, t.Symbol+" not found", ref(doc, notFoundSchema)),
		),
	})

	doc.AddOperation(item, http.MethodDelete, &openapi3.Operation{
		OperationID: "delete_" + t.Path,
		Summary:     "Delete one " + t.Path,
		Tags:        tags,
		Parameters:  openapi3.Parameters{itemParam()},
		Responses: responses(
			response(http.StatusOK, "Deleted successfully", ref(doc, deletedSchema)),
			response(http.StatusNotFound, t.Symbol+" not found", ref(doc, notFoundSchema)),
		),
	})
}

// ref points at a component schema that is already registered in doc.
func ref(doc *openapi3.T, component string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(componentsPrefix+component, doc.Components.Schemas[component].Value)
}

func itemParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewPathParameter("item_id").WithSchema(openapi3.NewIntegerSchema())}
}

type statusResponse struct {
	code int
	ref  *openapi3.ResponseRef
}

func response(code int, description string, body *openapi3.SchemaRef) statusResponse {
	return statusResponse{
		code: code,
		ref:  &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(body)},
	}
}

func responses(rs ...statusResponse) *openapi3.Responses {
	out := &openapi3.Responses{}
	for _, r := range rs {
		out.Set(strconv.Itoa(r.code), r.ref)
	}
	return out
}
