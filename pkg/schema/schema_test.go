package schema

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func sampleDefinition(t *testing.T) *model.Definition {
	t.Helper()
	return testsupport.MustParseDefinition(t, `{"fields":[
		{"id":"name","type":"text","label":"Name","validators":[{"type":"required"},{"type":"minLength","value":2},{"type":"maxLength","value":40}]},
		{"id":"age","type":"number","label":"Age","validators":[{"type":"min","value":18},{"type":"max","value":99}],"value":30},
		{"id":"contact","type":"group","label":"Contact","children":[
			{"id":"email","type":"email","label":"Email","validators":[{"type":"required"}]},
			{"id":"bio","type":"textarea","label":"Bio","validators":[]}
		]},
		{"id":"plan","type":"radio","label":"Plan","validators":[],"options":[{"label":"Free","value":"free"},{"label":"Pro","value":"pro"}]},
		{"id":"topics","type":"checkbox","label":"Topics","validators":[],"options":["go","rust"]},
		{"id":"rating","type":"stars","label":"Rating","validators":[]}
	]}`)
}

func TestFromDefinition_Constraints(t *testing.T) {
	s := FromDefinition(sampleDefinition(t))

	if diff := cmp.Diff([]string{"name"}, s.Required); diff != "" {
		t.Fatalf("root required mismatch (-want +got):\n%s", diff)
	}

	name := s.Properties["name"].Value
	if !name.Type.Is(openapi3.TypeString) || name.MinLength != 2 || name.MaxLength == nil || *name.MaxLength != 40 {
		t.Fatalf("unexpected name schema %+v", name)
	}

	age := s.Properties["age"].Value
	if !age.Type.Is(openapi3.TypeNumber) || *age.Min != 18 || *age.Max != 99 {
		t.Fatalf("unexpected age schema %+v", age)
	}
	if age.Default != 30.0 {
		t.Fatalf("expected default 30, got %v", age.Default)
	}

	contact := s.Properties["contact"].Value
	if !contact.Type.Is(openapi3.TypeObject) || contact.Title != "Contact" {
		t.Fatalf("group should become an object, got %+v", contact)
	}
	if diff := cmp.Diff([]string{"email"}, contact.Required); diff != "" {
		t.Fatalf("group required mismatch (-want +got):\n%s", diff)
	}
	if got := contact.Properties["email"].Value.Format; got != "email" {
		t.Fatalf("expected email format, got %q", got)
	}

	plan := s.Properties["plan"].Value
	if diff := cmp.Diff([]any{"free", "pro"}, plan.Enum); diff != "" {
		t.Fatalf("radio enum mismatch (-want +got):\n%s", diff)
	}

	topics := s.Properties["topics"].Value
	if !topics.Type.Is(openapi3.TypeArray) || topics.Items == nil {
		t.Fatalf("checkbox should become an array, got %+v", topics)
	}
	if diff := cmp.Diff([]any{"go", "rust"}, topics.Items.Value.Enum); diff != "" {
		t.Fatalf("checkbox enum mismatch (-want +got):\n%s", diff)
	}

	if got := s.Properties["rating"].Value.Description; got != "unknown input type: stars" {
		t.Fatalf("unexpected description for unknown kind %q", got)
	}

	if diff := cmp.Diff([]any{"name", "age", "contact", "plan", "topics", "rating"}, s.Extensions[ExtOrder]); diff != "" {
		t.Fatalf("order extension mismatch (-want +got):\n%s", diff)
	}
}

func TestFromDefinition_ValidatesSubmissions(t *testing.T) {
	s := FromDefinition(sampleDefinition(t))

	valid := map[string]any{
		"name":    "Ada",
		"age":     36.0,
		"contact": map[string]any{"email": "ada@example.com"},
		"plan":    "pro",
		"topics":  []any{"go"},
	}
	if err := s.VisitJSON(valid); err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}

	invalid := map[string]any{
		"name":    "A",
		"contact": map[string]any{"email": "ada@example.com"},
	}
	if err := s.VisitJSON(invalid); err == nil {
		t.Fatalf("expected minLength violation")
	}

	missing := map[string]any{"name": "Ada", "contact": map[string]any{}}
	if err := s.VisitJSON(missing); err == nil {
		t.Fatalf("expected required violation inside group")
	}
}

func TestDocument_Validates(t *testing.T) {
	doc, err := Document(context.Background(), sampleDefinition(t), Options{Title: "Signup", Path: "signup"})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Info.Title != "Signup" || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	item := doc.Paths.Value("/signup")
	if item == nil || item.Post == nil || item.Post.OperationID != "submitForm" {
		t.Fatalf("expected POST /signup operation")
	}
	if _, ok := doc.Components.Schemas[SchemaName]; !ok {
		t.Fatalf("expected %s component schema", SchemaName)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	def := sampleDefinition(t)
	doc, err := Document(context.Background(), def, Options{})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Import(context.Background(), raw, "submitForm")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	wantJSON, _ := def.ToJSON()
	gotJSON, _ := got.ToJSON()
	var want, have any
	_ = json.Unmarshal(wantJSON, &want)
	_ = json.Unmarshal(gotJSON, &have)
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_InfersKindsWithoutExtensions(t *testing.T) {
	raw := []byte(`{
		"openapi": "3.0.3",
		"info": {"title": "t", "version": "1"},
		"paths": {"/users": {"post": {
			"operationId": "createUser",
			"requestBody": {"content": {"application/json": {"schema": {
				"type": "object",
				"required": ["email"],
				"properties": {
					"email": {"type": "string", "format": "email"},
					"age": {"type": "integer", "minimum": 1},
					"role": {"type": "string", "enum": ["admin", "user"]}
				}
			}}}},
			"responses": {"204": {"description": "ok"}}
		}}}
	}`)

	def, err := Import(context.Background(), raw, "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	kinds := map[string]model.InputType{}
	for _, f := range def.AllFields() {
		kinds[f.ID()] = f.Type()
	}
	want := map[string]model.InputType{
		"age":   model.InputTypeNumber,
		"email": model.InputTypeEmail,
		"role":  model.InputTypeRadio,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	email, _ := def.FindChildByID("email")
	f, _ := email.AsField()
	if !f.HasValidator(model.ValidatorRequired) {
		t.Fatalf("expected required validator on email")
	}
	// Without an order extension properties are sorted by name.
	if first, _ := def.ChildAt(0); first.ID() != "age" {
		t.Fatalf("expected sorted order, first is %s", first.ID())
	}
}

func TestImport_Errors(t *testing.T) {
	if _, err := Import(context.Background(), nil, ""); err == nil {
		t.Fatalf("expected error for empty payload")
	}

	doc, err := Document(context.Background(), model.NewDefinition(), Options{})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	raw, _ := json.Marshal(doc)
	if _, err := Import(context.Background(), raw, "missing"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	nested := openapi3.NewObjectSchema().WithProperty("outer",
		openapi3.NewObjectSchema().WithProperty("inner", openapi3.NewObjectSchema()))
	if _, err := FromSchema(nested); !errors.Is(err, model.ErrNestedGroup) {
		t.Fatalf("expected ErrNestedGroup, got %v", err)
	}
	if _, err := FromSchema(openapi3.NewStringSchema()); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
}
