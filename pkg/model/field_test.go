package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustField(t *testing.T, cfg FieldConfig) *Field {
	t.Helper()
	f, err := NewField(cfg)
	if err != nil {
		t.Fatalf("NewField(%+v): %v", cfg, err)
	}
	return f
}

func TestNewField_Defaults(t *testing.T) {
	f := mustField(t, FieldConfig{Type: InputTypeEmail})

	if f.ID() == "" {
		t.Fatalf("expected generated id")
	}
	if f.Label() != "Email Field" {
		t.Fatalf("expected default label, got %q", f.Label())
	}
	if f.Kind() != KindField {
		t.Fatalf("expected field kind, got %s", f.Kind())
	}
	if _, ok := f.AsGroup(); ok {
		t.Fatalf("field must not convert to group")
	}
}

func TestNewField_RejectsGroupType(t *testing.T) {
	if _, err := NewField(FieldConfig{Type: InputTypeGroup}); !errors.Is(err, ErrInvalidFieldType) {
		t.Fatalf("expected ErrInvalidFieldType, got %v", err)
	}
	if _, err := NewField(FieldConfig{}); !errors.Is(err, ErrInvalidFieldType) {
		t.Fatalf("expected ErrInvalidFieldType for empty type, got %v", err)
	}
}

func TestNewField_UnknownTypeKeepsFallbackLabel(t *testing.T) {
	f := mustField(t, FieldConfig{ID: "c", Type: "colour"})
	if f.Label() != "Unknown Field" {
		t.Fatalf("expected fallback label, got %q", f.Label())
	}
}

func TestField_SetLabel(t *testing.T) {
	f := mustField(t, FieldConfig{ID: "f1", Type: InputTypeText})

	if err := f.SetLabel("   "); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if f.Label() != "Text Field" {
		t.Fatalf("label changed on rejected update: %q", f.Label())
	}
	if err := f.SetLabel("  Name "); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}
	if f.Label() != "Name" {
		t.Fatalf("expected trimmed label, got %q", f.Label())
	}
}

func TestField_AddValidatorRejectsDuplicates(t *testing.T) {
	f := mustField(t, FieldConfig{ID: "f1", Type: InputTypeText})

	if err := f.AddValidator(Required()); err != nil {
		t.Fatalf("first required: %v", err)
	}
	if err := f.AddValidator(Required()); !errors.Is(err, ErrDuplicateValidator) {
		t.Fatalf("expected ErrDuplicateValidator, got %v", err)
	}
	if diff := cmp.Diff([]ValidatorDefinition{Required()}, f.Validators()); diff != "" {
		t.Fatalf("validators mismatch (-want +got):\n%s", diff)
	}
}

func TestField_AddValidatorChecks(t *testing.T) {
	cases := []struct {
		name string
		typ  InputType
		rule ValidatorDefinition
		err  error
	}{
		{name: "unknown kind", typ: InputTypeText, rule: ValidatorDefinition{Kind: "pattern"}, err: ErrUnknownValidator},
		{name: "missing value", typ: InputTypeText, rule: ValidatorDefinition{Kind: ValidatorMinLength}, err: ErrValidatorValueMissing},
		{name: "length on number", typ: InputTypeNumber, rule: MaxLength(3), err: ErrValidatorNotApplicable},
		{name: "min on text", typ: InputTypeText, rule: Min(1), err: ErrValidatorNotApplicable},
		{name: "required on checkbox", typ: InputTypeCheckbox, rule: Required()},
		{name: "max on number", typ: InputTypeNumber, rule: Max(10)},
		{name: "minLength on textarea", typ: InputTypeTextarea, rule: MinLength(2)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := mustField(t, FieldConfig{Type: tc.typ})
			err := f.AddValidator(tc.rule)
			if tc.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if len(f.Validators()) != 0 {
				t.Fatalf("rejected rule was stored")
			}
		})
	}
}

func TestField_UpdateAndRemoveValidator(t *testing.T) {
	f := mustField(t, FieldConfig{
		ID:         "f1",
		Type:       InputTypeText,
		Validators: []ValidatorDefinition{Required(), MinLength(2)},
	})

	ten := 10.0
	if !f.UpdateValidator(ValidatorMinLength, &ten) {
		t.Fatalf("UpdateValidator returned false")
	}
	got, _ := f.Validator(ValidatorMinLength)
	if got.NumberOr(0) != 10 {
		t.Fatalf("expected updated value 10, got %v", got)
	}
	if f.UpdateValidator(ValidatorMax, &ten) {
		t.Fatalf("updating a missing validator should fail")
	}
	if !f.RemoveValidator(ValidatorRequired) {
		t.Fatalf("RemoveValidator returned false")
	}
	if f.HasValidator(ValidatorRequired) {
		t.Fatalf("required still attached")
	}
	f.ClearValidators()
	if len(f.Validators()) != 0 {
		t.Fatalf("expected no validators after clear")
	}
}

func TestField_SetValidatorsIsAtomic(t *testing.T) {
	f := mustField(t, FieldConfig{ID: "f1", Type: InputTypeText, Validators: []ValidatorDefinition{Required()}})

	err := f.SetValidators([]ValidatorDefinition{MinLength(1), MinLength(2)})
	if !errors.Is(err, ErrDuplicateValidator) {
		t.Fatalf("expected ErrDuplicateValidator, got %v", err)
	}
	if diff := cmp.Diff([]ValidatorDefinition{Required()}, f.Validators()); diff != "" {
		t.Fatalf("validators changed (-want +got):\n%s", diff)
	}
}

func TestField_Options(t *testing.T) {
	text := mustField(t, FieldConfig{Type: InputTypeText})
	if err := text.AddOption(Option("a")); !errors.Is(err, ErrOptionsNotSupported) {
		t.Fatalf("expected ErrOptionsNotSupported, got %v", err)
	}

	radio := mustField(t, FieldConfig{ID: "r", Type: InputTypeRadio, Options: []FieldOption{Option("Yes"), Option("No")}})
	if err := radio.AddOption(Option("Yes")); !errors.Is(err, ErrDuplicateOption) {
		t.Fatalf("expected ErrDuplicateOption, got %v", err)
	}
	if err := radio.AddOption(FieldOption{}); !errors.Is(err, ErrEmptyOption) {
		t.Fatalf("expected ErrEmptyOption, got %v", err)
	}
	if !radio.UpdateOption("No", "Nope", true) {
		t.Fatalf("UpdateOption returned false")
	}
	if !radio.RemoveOption("Yes") {
		t.Fatalf("RemoveOption returned false")
	}

	want := []FieldOption{{Label: "Nope", Value: "No", Disabled: true}}
	if diff := cmp.Diff(want, radio.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestField_ValidateCollectsIssues(t *testing.T) {
	f := &Field{
		id:      "f1",
		typ:     InputTypeText,
		options: []FieldOption{Option("x")},
		validators: []ValidatorDefinition{
			Required(),
			Required(),
		},
	}

	got := f.Validate()
	want := FieldValidation{
		Valid: false,
		Errors: []string{
			"field label cannot be empty",
			"field type text does not support options",
			"duplicate validator type: required",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
}

func TestField_CloneIsDeep(t *testing.T) {
	f := mustField(t, FieldConfig{
		ID:         "c1",
		Type:       InputTypeCheckbox,
		Options:    []FieldOption{Option("a")},
		Validators: []ValidatorDefinition{Required()},
		Value:      []any{"a"},
	})

	clone := f.Clone()
	_ = clone.SetLabel("Other")
	_ = clone.AddOption(Option("b"))
	clone.Value().([]any)[0] = "z"

	if f.Label() == "Other" || len(f.Options()) != 1 {
		t.Fatalf("clone shares state with original")
	}
	if f.Value().([]any)[0] != "a" {
		t.Fatalf("clone shares value with original")
	}
}
