package model

import (
	"fmt"
	"strings"
)

// FieldOption is one choice of a checkbox or radio field.
type FieldOption struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Option builds an option whose label and value are the same string.
func Option(value string) FieldOption {
	return FieldOption{Label: value, Value: value}
}

// FieldConfig describes a Field to construct. Empty ID and Label are filled
// with a generated id and the default label for Type.
type FieldConfig struct {
	ID         string
	Type       InputType
	Label      string
	Validators []ValidatorDefinition
	Options    []FieldOption
	Value      any
}

// Field is a single input of the form.
type Field struct {
	id         string
	typ        InputType
	label      string
	validators []ValidatorDefinition
	options    []FieldOption
	value      any
}

var _ Element = (*Field)(nil)

// NewField validates cfg and builds a Field.
func NewField(cfg FieldConfig) (*Field, error) {
	typ := InputType(strings.TrimSpace(string(cfg.Type)))
	if typ == "" || typ == InputTypeGroup {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldType, cfg.Type)
	}

	f := &Field{
		id:    strings.TrimSpace(cfg.ID),
		typ:   typ,
		label: DefaultLabel(typ),
		value: cfg.Value,
	}
	if f.id == "" {
		f.id = NewID()
	}
	if strings.TrimSpace(cfg.Label) != "" {
		f.label = strings.TrimSpace(cfg.Label)
	}
	for _, v := range cfg.Validators {
		if err := f.AddValidator(v); err != nil {
			return nil, err
		}
	}
	for _, opt := range cfg.Options {
		if err := f.AddOption(opt); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// NewFieldOfType builds a field of kind t with its default label.
func NewFieldOfType(t InputType) (*Field, error) {
	return NewField(FieldConfig{Type: t})
}

func (f *Field) ID() string      { return f.id }
func (f *Field) Label() string   { return f.label }
func (f *Field) Type() InputType { return f.typ }
func (f *Field) Kind() Kind      { return KindField }
func (f *Field) Value() any      { return f.value }

// SetValue stores the initial value emitted by the code generator.
func (f *Field) SetValue(v any) { f.value = v }

// SupportsOptions reports whether the field kind carries choices.
func (f *Field) SupportsOptions() bool {
	return f.typ.SupportsOptions()
}

func (f *Field) AsField() (*Field, bool) { return f, true }
func (f *Field) AsGroup() (*Group, bool) { return nil, false }

// SetLabel trims and stores the label, rejecting blank values.
func (f *Field) SetLabel(label string) error {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ErrEmptyLabel
	}
	f.label = trimmed
	return nil
}

// Validators returns a copy of the validator list.
func (f *Field) Validators() []ValidatorDefinition {
	return cloneValidators(f.validators)
}

// HasValidator reports whether a rule of the given kind is attached.
func (f *Field) HasValidator(kind ValidatorKind) bool {
	return f.validatorIndex(kind) >= 0
}

// Validator returns the rule of the given kind.
func (f *Field) Validator(kind ValidatorKind) (ValidatorDefinition, bool) {
	idx := f.validatorIndex(kind)
	if idx < 0 {
		return ValidatorDefinition{}, false
	}
	return f.validators[idx].clone(), true
}

// AddValidator appends a rule. Duplicate kinds, unknown kinds, missing
// parameters and rules that do not apply to the field kind are rejected
// without touching the existing list.
func (f *Field) AddValidator(v ValidatorDefinition) error {
	if f.HasValidator(v.Kind) {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, v.Kind)
	}
	if err := checkValidator(f.typ, v); err != nil {
		return err
	}
	f.validators = append(f.validators, v.clone())
	return nil
}

// SetValidators replaces the rule list after checking every entry.
func (f *Field) SetValidators(validators []ValidatorDefinition) error {
	seen := make(map[ValidatorKind]struct{}, len(validators))
	for _, v := range validators {
		if _, dup := seen[v.Kind]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateValidator, v.Kind)
		}
		seen[v.Kind] = struct{}{}
		if err := checkValidator(f.typ, v); err != nil {
			return err
		}
	}
	f.validators = cloneValidators(validators)
	return nil
}

// RemoveValidator drops the rule of the given kind.
func (f *Field) RemoveValidator(kind ValidatorKind) bool {
	idx := f.validatorIndex(kind)
	if idx < 0 {
		return false
	}
	f.validators = append(f.validators[:idx], f.validators[idx+1:]...)
	return true
}

// UpdateValidator changes the parameter of an attached rule.
func (f *Field) UpdateValidator(kind ValidatorKind, value *float64) bool {
	idx := f.validatorIndex(kind)
	if idx < 0 {
		return false
	}
	if value == nil {
		f.validators[idx].Value = nil
		return true
	}
	v := *value
	f.validators[idx].Value = &v
	return true
}

// ClearValidators removes every rule.
func (f *Field) ClearValidators() {
	f.validators = nil
}

func (f *Field) validatorIndex(kind ValidatorKind) int {
	for i, v := range f.validators {
		if v.Kind == kind {
			return i
		}
	}
	return -1
}

// Options returns a copy of the option list, nil when the field has none.
func (f *Field) Options() []FieldOption {
	if f.options == nil {
		return nil
	}
	return append([]FieldOption(nil), f.options...)
}

// AddOption appends a choice. Only checkbox and radio fields accept options
// and values must be unique.
func (f *Field) AddOption(opt FieldOption) error {
	if !f.SupportsOptions() {
		return fmt.Errorf("%w: %s", ErrOptionsNotSupported, f.typ)
	}
	opt.Label = strings.TrimSpace(opt.Label)
	if opt.Value == "" {
		opt.Value = opt.Label
	}
	if opt.Label == "" {
		opt.Label = opt.Value
	}
	if opt.Label == "" {
		return ErrEmptyOption
	}
	if f.optionIndex(opt.Value) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateOption, opt.Value)
	}
	f.options = append(f.options, opt)
	return nil
}

// SetOptions replaces the option list after checking every entry.
func (f *Field) SetOptions(options []FieldOption) error {
	probe := &Field{typ: f.typ}
	for _, opt := range options {
		if err := probe.AddOption(opt); err != nil {
			return err
		}
	}
	f.options = probe.options
	return nil
}

// RemoveOption drops the option with the given value.
func (f *Field) RemoveOption(value string) bool {
	idx := f.optionIndex(value)
	if idx < 0 {
		return false
	}
	f.options = append(f.options[:idx], f.options[idx+1:]...)
	return true
}

// UpdateOption relabels or toggles the option with the given value. A blank
// label keeps the current one.
func (f *Field) UpdateOption(value, label string, disabled bool) bool {
	idx := f.optionIndex(value)
	if idx < 0 {
		return false
	}
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		f.options[idx].Label = trimmed
	}
	f.options[idx].Disabled = disabled
	return true
}

// ClearOptions removes every option.
func (f *Field) ClearOptions() {
	f.options = nil
}

func (f *Field) optionIndex(value string) int {
	for i, opt := range f.options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

// FieldValidation lists every configuration problem found on a field.
type FieldValidation struct {
	Valid  bool
	Errors []string
}

// Validate inspects the field without failing fast.
func (f *Field) Validate() FieldValidation {
	var errs []string
	if strings.TrimSpace(f.label) == "" {
		errs = append(errs, "field label cannot be empty")
	}

	if f.SupportsOptions() {
		values := make(map[string]struct{}, len(f.options))
		for i, opt := range f.options {
			if strings.TrimSpace(opt.Label) == "" {
				errs = append(errs, fmt.Sprintf("option at index %d has empty label", i))
			}
			if _, dup := values[opt.Value]; dup {
				errs = append(errs, fmt.Sprintf("duplicate option value: %s", opt.Value))
			}
			values[opt.Value] = struct{}{}
		}
	} else if len(f.options) > 0 {
		errs = append(errs, fmt.Sprintf("field type %s does not support options", f.typ))
	}

	kinds := make(map[ValidatorKind]struct{}, len(f.validators))
	for i, v := range f.validators {
		if strings.TrimSpace(string(v.Kind)) == "" {
			errs = append(errs, fmt.Sprintf("validator at index %d has empty type", i))
		}
		if _, dup := kinds[v.Kind]; dup {
			errs = append(errs, fmt.Sprintf("duplicate validator type: %s", v.Kind))
		}
		kinds[v.Kind] = struct{}{}
	}

	return FieldValidation{Valid: len(errs) == 0, Errors: errs}
}

// Clone returns a deep copy with the same id.
func (f *Field) Clone() *Field {
	return &Field{
		id:         f.id,
		typ:        f.typ,
		label:      f.label,
		validators: cloneValidators(f.validators),
		options:    f.Options(),
		value:      cloneValue(f.value),
	}
}

func (f *Field) cloneElement() Element { return f.Clone() }

// assign overwrites every attribute except the id.
func (f *Field) assign(other *Field) {
	f.typ = other.typ
	f.label = other.label
	f.validators = cloneValidators(other.validators)
	f.options = other.Options()
	f.value = cloneValue(other.value)
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = cloneValue(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = cloneValue(value)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return v
	}
}
