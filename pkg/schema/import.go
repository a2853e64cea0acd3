package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrNoRequestBody is returned when the document has no operation with a
	// JSON request body matching the requested operation id.
	ErrNoRequestBody = errors.New("schema: no JSON request body found")
	// ErrNotObject is returned when a form schema is not an object.
	ErrNotObject = errors.New("schema: form schema must be an object")
)

// Import parses an OpenAPI document and builds a definition from the JSON
// request body of operationID. When operationID is empty the first operation
// (by path, then method) carrying a JSON body is used.
func Import(ctx context.Context, raw []byte, operationID string) (*model.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate document: %w", err)
	}

	body := findRequestSchema(doc, strings.TrimSpace(operationID))
	if body == nil {
		return nil, ErrNoRequestBody
	}
	return FromSchema(body)
}

// FromSchema builds a definition from an object schema. Object properties
// become groups; deeper nesting is rejected.
func FromSchema(s *openapi3.Schema) (*model.Definition, error) {
	if s == nil || !isObject(s) {
		return nil, ErrNotObject
	}
	def := model.NewDefinition()
	for _, name := range propertyOrder(s) {
		prop := s.Properties[name].Value
		if prop == nil {
			continue
		}
		var el model.Element
		if isObject(prop) {
			grp, err := groupFromSchema(name, prop)
			if err != nil {
				return nil, err
			}
			el = grp
		} else {
			f, err := fieldFromSchema(name, prop, contains(s.Required, name))
			if err != nil {
				return nil, err
			}
			el = f
		}
		if err := def.AddChild(el); err != nil {
			return nil, fmt.Errorf("schema: property %q: %w", name, err)
		}
	}
	return def, nil
}

func groupFromSchema(id string, s *openapi3.Schema) (*model.Group, error) {
	label := s.Title
	if strings.TrimSpace(label) == "" {
		label = id
	}
	grp := model.NewGroupWithID(id, label)
	for _, name := range propertyOrder(s) {
		prop := s.Properties[name].Value
		if prop == nil {
			continue
		}
		if isObject(prop) {
			return nil, fmt.Errorf("schema: property %q.%q: %w", id, name, model.ErrNestedGroup)
		}
		f, err := fieldFromSchema(name, prop, contains(s.Required, name))
		if err != nil {
			return nil, err
		}
		if err := grp.AddChild(f); err != nil {
			return nil, fmt.Errorf("schema: property %q.%q: %w", id, name, err)
		}
	}
	return grp, nil
}

func fieldFromSchema(id string, s *openapi3.Schema, required bool) (*model.Field, error) {
	kind := inferKind(s)
	cfg := model.FieldConfig{
		ID:    id,
		Type:  kind,
		Label: s.Title,
		Value: s.Default,
	}
	if strings.TrimSpace(cfg.Label) == "" {
		cfg.Label = id
	}
	if required {
		cfg.Validators = append(cfg.Validators, model.Required())
	}
	if kind.TextLike() || !kind.Valid() {
		if s.MinLength > 0 {
			cfg.Validators = append(cfg.Validators, model.MinLength(int(s.MinLength)))
		}
		if s.MaxLength != nil {
			cfg.Validators = append(cfg.Validators, model.MaxLength(int(*s.MaxLength)))
		}
	}
	if kind == model.InputTypeNumber || !kind.Valid() {
		if s.Min != nil {
			cfg.Validators = append(cfg.Validators, model.Min(*s.Min))
		}
		if s.Max != nil {
			cfg.Validators = append(cfg.Validators, model.Max(*s.Max))
		}
	}
	if opts, ok := extensionOptions(s); ok {
		cfg.Options = opts
	} else if kind.SupportsOptions() {
		enum := s.Enum
		if kind == model.InputTypeCheckbox && s.Items != nil && s.Items.Value != nil {
			enum = s.Items.Value.Enum
		}
		for _, v := range enum {
			value := fmt.Sprint(v)
			cfg.Options = append(cfg.Options, model.FieldOption{Label: value, Value: value})
		}
	}

	f, err := model.NewField(cfg)
	if err != nil {
		return nil, fmt.Errorf("schema: property %q: %w", id, err)
	}
	return f, nil
}

func inferKind(s *openapi3.Schema) model.InputType {
	if raw, ok := s.Extensions[ExtKind].(string); ok && strings.TrimSpace(raw) != "" {
		return model.InputType(strings.TrimSpace(raw))
	}
	switch {
	case s.Type.Is(openapi3.TypeNumber), s.Type.Is(openapi3.TypeInteger):
		return model.InputTypeNumber
	case s.Type.Is(openapi3.TypeArray):
		return model.InputTypeCheckbox
	case s.Type.Is(openapi3.TypeString):
		switch s.Format {
		case "email":
			return model.InputTypeEmail
		case "date", "date-time":
			return model.InputTypeDate
		case "password":
			return model.InputTypePassword
		}
		if len(s.Enum) > 0 {
			return model.InputTypeRadio
		}
	}
	return model.InputTypeText
}

func extensionOptions(s *openapi3.Schema) ([]model.FieldOption, bool) {
	raw, ok := s.Extensions[ExtOptions]
	if !ok {
		return nil, false
	}
	if opts, ok := raw.([]model.FieldOption); ok {
		return opts, true
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var opts []model.FieldOption
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, false
	}
	return opts, true
}

func isObject(s *openapi3.Schema) bool {
	return s.Type.Is(openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0)
}

// propertyOrder honours the order extension and appends any remaining
// properties sorted by name.
func propertyOrder(s *openapi3.Schema) []string {
	seen := make(map[string]struct{}, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	if order, ok := s.Extensions[ExtOrder].([]any); ok {
		for _, entry := range order {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if _, exists := s.Properties[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func findRequestSchema(doc *openapi3.T, operationID string) *openapi3.Schema {
	if doc.Paths == nil {
		return nil
	}
	paths := doc.Paths.InMatchingOrder()
	sort.Strings(paths)
	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			if op == nil || (operationID != "" && op.OperationID != operationID) {
				continue
			}
			if s := jsonBodySchema(op); s != nil {
				return s
			}
		}
	}
	return nil
}

func jsonBodySchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
