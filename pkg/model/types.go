package model

import "strings"

// InputType enumerates the input kinds a Field can take. InputTypeGroup is the
// sentinel used by Group elements.
type InputType string

const (
	InputTypeGroup    InputType = "group"
	InputTypeText     InputType = "text"
	InputTypeTextarea InputType = "textarea"
	InputTypeNumber   InputType = "number"
	InputTypeEmail    InputType = "email"
	InputTypePassword InputType = "password"
	InputTypeCheckbox InputType = "checkbox"
	InputTypeRadio    InputType = "radio"
	InputTypeDate     InputType = "date"
)

// InputTypes lists the field kinds in palette order.
var InputTypes = []InputType{
	InputTypeText,
	InputTypeTextarea,
	InputTypeNumber,
	InputTypeEmail,
	InputTypePassword,
	InputTypeCheckbox,
	InputTypeRadio,
	InputTypeDate,
}

var defaultLabels = map[InputType]string{
	InputTypeText:     "Text Field",
	InputTypeTextarea: "Text Area",
	InputTypeNumber:   "Number Field",
	InputTypeEmail:    "Email Field",
	InputTypePassword: "Password Field",
	InputTypeCheckbox: "Checkbox Field",
	InputTypeRadio:    "Radio Field",
	InputTypeDate:     "Date Field",
	InputTypeGroup:    "Group",
}

// Valid reports whether t is a known field kind. The group sentinel is not a
// field kind.
func (t InputType) Valid() bool {
	if t == InputTypeGroup {
		return false
	}
	_, ok := defaultLabels[t]
	return ok
}

// SupportsOptions reports whether fields of this kind carry choice options.
func (t InputType) SupportsOptions() bool {
	return t == InputTypeCheckbox || t == InputTypeRadio
}

// TextLike reports whether length validators apply to the kind.
func (t InputType) TextLike() bool {
	switch t {
	case InputTypeText, InputTypeTextarea, InputTypeEmail, InputTypePassword:
		return true
	}
	return false
}

// DisplayName returns the palette name for the kind ("Text", "Textarea", ...).
func (t InputType) DisplayName() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultLabel returns the label given to new elements of kind t.
func DefaultLabel(t InputType) string {
	if label, ok := defaultLabels[t]; ok {
		return label
	}
	return "Unknown Field"
}

// ParseInputType resolves a user supplied kind name, ignoring case and
// surrounding whitespace.
func ParseInputType(raw string) (InputType, bool) {
	t := InputType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Kind discriminates the Element variants.
type Kind uint8

const (
	KindField Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}
