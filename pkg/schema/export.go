package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// ExtKind records the exact input kind so Import can restore kinds that
	// share a JSON type (text, textarea, password).
	ExtKind = "x-formbuilder-kind"
	// ExtOrder lists property names in definition order.
	ExtOrder = "x-formbuilder-order"
	// ExtOptions keeps option labels and disabled flags, which an enum
	// cannot carry.
	ExtOptions = "x-formbuilder-options"

	// SchemaName is the components key the form schema is published under.
	SchemaName = "Form"
)

// Options configure Document.
type Options struct {
	Title       string
	Version     string
	Path        string
	OperationID string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "Form"
	}
	if strings.TrimSpace(o.Version) == "" {
		o.Version = "1.0.0"
	}
	o.Path = "/" + strings.TrimLeft(strings.TrimSpace(o.Path), "/")
	if o.Path == "/" {
		o.Path = "/form"
	}
	if strings.TrimSpace(o.OperationID) == "" {
		o.OperationID = "submitForm"
	}
	return o
}

// FromDefinition returns the object schema of a form submission.
func FromDefinition(def *model.Definition) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	if def == nil {
		return root
	}
	order := make([]any, 0, def.Len())
	for _, el := range def.Children() {
		switch el.Kind() {
		case model.KindField:
			f, _ := el.AsField()
			addProperty(root, f)
		case model.KindGroup:
			grp, _ := el.AsGroup()
			root.WithProperty(grp.ID(), groupSchema(grp))
		}
		order = append(order, el.ID())
	}
	setExtension(root, ExtOrder, order)
	return root
}

// Document builds an OpenAPI 3 document with a single POST operation whose
// request body is the form schema, and validates it.
func Document(ctx context.Context, def *model.Definition, opts Options) (*openapi3.T, error) {
	opts = opts.withDefaults()

	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/"+SchemaName, FromDefinition(def)))

	op := openapi3.NewOperation()
	op.OperationID = opts.OperationID
	op.Summary = opts.Title
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(204, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission accepted")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission rejected")}),
	)

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		SchemaName: openapi3.NewSchemaRef("", FromDefinition(def)),
	}

	doc := &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: opts.Title, Version: opts.Version},
		Paths:      openapi3.NewPaths(openapi3.WithPath(opts.Path, &openapi3.PathItem{Post: op})),
		Components: &components,
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate document: %w", err)
	}
	return doc, nil
}

func groupSchema(grp *model.Group) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Title = grp.Label()
	order := make([]any, 0, grp.Len())
	for _, f := range grp.Children() {
		addProperty(s, f)
		order = append(order, f.ID())
	}
	setExtension(s, ExtOrder, order)
	return s
}

func addProperty(parent *openapi3.Schema, f *model.Field) {
	parent.WithProperty(f.ID(), FieldSchema(f))
	if f.HasValidator(model.ValidatorRequired) {
		parent.Required = append(parent.Required, f.ID())
	}
}

// FieldSchema returns the schema of a single field value.
func FieldSchema(f *model.Field) *openapi3.Schema {
	var s *openapi3.Schema
	switch f.Type() {
	case model.InputTypeText, model.InputTypeTextarea, model.InputTypePassword:
		s = openapi3.NewStringSchema()
	case model.InputTypeEmail:
		s = openapi3.NewStringSchema().WithFormat("email")
	case model.InputTypeDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	case model.InputTypeNumber:
		s = openapi3.NewFloat64Schema()
		s.Format = ""
	case model.InputTypeRadio:
		s = openapi3.NewStringSchema()
		if values := optionValues(f); len(values) > 0 {
			s.WithEnum(values...)
		}
	case model.InputTypeCheckbox:
		items := openapi3.NewStringSchema()
		if values := optionValues(f); len(values) > 0 {
			items.WithEnum(values...)
		}
		s = openapi3.NewArraySchema().WithItems(items).WithUniqueItems(true)
	default:
		s = openapi3.NewSchema()
		s.Description = "unknown input type: " + string(f.Type())
	}
	s.Title = f.Label()
	setExtension(s, ExtKind, string(f.Type()))
	if opts := f.Options(); len(opts) > 0 {
		setExtension(s, ExtOptions, opts)
	}

	for _, v := range f.Validators() {
		applyValidator(s, v)
	}
	if value := f.Value(); value != nil && s.VisitJSON(value) == nil {
		s.Default = value
	}
	return s
}

func applyValidator(s *openapi3.Schema, v model.ValidatorDefinition) {
	if v.Value == nil {
		return
	}
	n := *v.Value
	switch v.Kind {
	case model.ValidatorMinLength:
		if n >= 0 {
			s.WithMinLength(int64(n))
		}
	case model.ValidatorMaxLength:
		if n >= 0 {
			s.WithMaxLength(int64(n))
		}
	case model.ValidatorMin:
		s.WithMin(n)
	case model.ValidatorMax:
		s.WithMax(n)
	}
}

func optionValues(f *model.Field) []any {
	opts := f.Options()
	values := make([]any, 0, len(opts))
	for _, opt := range opts {
		values = append(values, opt.Value)
	}
	return values
}

func setExtension(s *openapi3.Schema, key string, value any) {
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[key] = value
}
