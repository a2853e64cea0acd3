package model

import (
	"fmt"
	"strconv"
)

// ValidatorKind names a validation rule.
type ValidatorKind string

const (
	ValidatorRequired  ValidatorKind = "required"
	ValidatorMinLength ValidatorKind = "minLength"
	ValidatorMaxLength ValidatorKind = "maxLength"
	ValidatorMin       ValidatorKind = "min"
	ValidatorMax       ValidatorKind = "max"
)

// ValidatorKinds lists the supported rules in display order.
var ValidatorKinds = []ValidatorKind{
	ValidatorRequired,
	ValidatorMinLength,
	ValidatorMaxLength,
	ValidatorMin,
	ValidatorMax,
}

// Known reports whether k is one of the supported rules.
func (k ValidatorKind) Known() bool {
	switch k {
	case ValidatorRequired, ValidatorMinLength, ValidatorMaxLength, ValidatorMin, ValidatorMax:
		return true
	}
	return false
}

// NeedsValue reports whether the rule carries a numeric parameter.
func (k ValidatorKind) NeedsValue() bool {
	return k.Known() && k != ValidatorRequired
}

// AppliesTo reports whether the rule makes sense for fields of kind t. Unknown
// field kinds accept every rule so restored definitions keep their data.
func (k ValidatorKind) AppliesTo(t InputType) bool {
	if !t.Valid() {
		return true
	}
	switch k {
	case ValidatorRequired:
		return true
	case ValidatorMinLength, ValidatorMaxLength:
		return t.TextLike()
	case ValidatorMin, ValidatorMax:
		return t == InputTypeNumber
	}
	return false
}

// ValidatorDefinition is a validation rule attached to a Field. Value is only
// meaningful for the parameterised rules.
type ValidatorDefinition struct {
	Kind  ValidatorKind `json:"type"`
	Value *float64      `json:"value,omitempty"`
}

// Required builds a required rule.
func Required() ValidatorDefinition {
	return ValidatorDefinition{Kind: ValidatorRequired}
}

// MinLength builds a minimum length rule.
func MinLength(n int) ValidatorDefinition {
	return withValue(ValidatorMinLength, float64(n))
}

// MaxLength builds a maximum length rule.
func MaxLength(n int) ValidatorDefinition {
	return withValue(ValidatorMaxLength, float64(n))
}

// Min builds a minimum value rule.
func Min(v float64) ValidatorDefinition {
	return withValue(ValidatorMin, v)
}

// Max builds a maximum value rule.
func Max(v float64) ValidatorDefinition {
	return withValue(ValidatorMax, v)
}

func withValue(kind ValidatorKind, v float64) ValidatorDefinition {
	return ValidatorDefinition{Kind: kind, Value: &v}
}

// NumberOr returns the parameter, or fallback when none is set.
func (v ValidatorDefinition) NumberOr(fallback float64) float64 {
	if v.Value == nil {
		return fallback
	}
	return *v.Value
}

func (v ValidatorDefinition) String() string {
	if v.Value == nil {
		return string(v.Kind)
	}
	return string(v.Kind) + "(" + strconv.FormatFloat(*v.Value, 'f', -1, 64) + ")"
}

func (v ValidatorDefinition) clone() ValidatorDefinition {
	out := ValidatorDefinition{Kind: v.Kind}
	if v.Value != nil {
		value := *v.Value
		out.Value = &value
	}
	return out
}

func checkValidator(t InputType, v ValidatorDefinition) error {
	if !v.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownValidator, v.Kind)
	}
	if v.Kind.NeedsValue() && v.Value == nil {
		return fmt.Errorf("%w: %s", ErrValidatorValueMissing, v.Kind)
	}
	if !v.Kind.AppliesTo(t) {
		return fmt.Errorf("%w: %s on %s", ErrValidatorNotApplicable, v.Kind, t)
	}
	return nil
}

func cloneValidators(in []ValidatorDefinition) []ValidatorDefinition {
	if len(in) == 0 {
		return nil
	}
	out := make([]ValidatorDefinition, len(in))
	for i, v := range in {
		out[i] = v.clone()
	}
	return out
}
