package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type definitionJSON struct {
	Fields   []json.RawMessage `json:"fields"`
	Children []json.RawMessage `json:"children,omitempty"`
}

type fieldJSON struct {
	ID         string                `json:"id"`
	Type       InputType             `json:"type"`
	Label      string                `json:"label"`
	Validators []ValidatorDefinition `json:"validators"`
	Options    []FieldOption         `json:"options,omitempty"`
	Value      any                   `json:"value,omitempty"`
}

type groupJSON struct {
	ID       string      `json:"id"`
	Type     InputType   `json:"type"`
	Label    string      `json:"label"`
	Children []fieldJSON `json:"children"`
}

// elementJSON is the read side shape shared by both variants.
type elementJSON struct {
	ID         string            `json:"id"`
	Type       InputType         `json:"type"`
	Label      string            `json:"label"`
	Validators []validatorJSON   `json:"validators"`
	Options    []FieldOption     `json:"options"`
	Value      any               `json:"value"`
	Children   []json.RawMessage `json:"children"`
}

type validatorJSON struct {
	Type  ValidatorKind   `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ToJSON encodes the definition as {"fields": [...]}.
func (d *Definition) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// MarshalJSON implements json.Marshaler.
func (d *Definition) MarshalJSON() ([]byte, error) {
	out := struct {
		Fields []Element `json:"fields"`
	}{Fields: d.Children()}
	if out.Fields == nil {
		out.Fields = []Element{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. On error the receiver is left
// untouched.
func (d *Definition) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	d.children = parsed.children
	return nil
}

// FromJSON decodes a definition. Unknown input and validator kinds are kept so
// renderers can skip them; duplicate ids, duplicate validators and nested
// groups are errors. Every failure wraps ErrInvalidDefinition.
func FromJSON(data []byte) (*Definition, error) {
	var raw definitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	items := raw.Fields
	if items == nil {
		items = raw.Children
	}

	d := NewDefinition()
	for i, item := range items {
		el, err := decodeElement(item, true)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrInvalidDefinition, i, err)
		}
		if err := d.AddChild(el); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrInvalidDefinition, i, err)
		}
	}
	return d, nil
}

// UnmarshalElement decodes a single field or group using the same rules as
// FromJSON.
func UnmarshalElement(data []byte) (Element, error) {
	el, err := decodeElement(data, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	return el, nil
}

// MarshalJSON implements json.Marshaler.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.wire())
}

func (f *Field) wire() fieldJSON {
	out := fieldJSON{
		ID:         f.id,
		Type:       f.typ,
		Label:      f.label,
		Validators: cloneValidators(f.validators),
		Options:    f.Options(),
		Value:      f.value,
	}
	if out.Validators == nil {
		out.Validators = []ValidatorDefinition{}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{
		ID:       g.id,
		Type:     InputTypeGroup,
		Label:    g.label,
		Children: make([]fieldJSON, len(g.children)),
	}
	for i, child := range g.children {
		out.Children[i] = child.wire()
	}
	return json.Marshal(out)
}

func decodeElement(data []byte, allowGroup bool) (Element, error) {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return nil, ErrEmptyID
	}
	typ := InputType(strings.TrimSpace(string(raw.Type)))

	if typ == InputTypeGroup {
		if !allowGroup {
			return nil, fmt.Errorf("%w: %s", ErrNestedGroup, id)
		}
		g := NewGroupWithID(id, raw.Label)
		for i, item := range raw.Children {
			child, err := decodeElement(item, false)
			if err != nil {
				return nil, fmt.Errorf("group %s child %d: %w", id, i, err)
			}
			f, _ := child.AsField()
			if err := g.AddChild(f); err != nil {
				return nil, fmt.Errorf("group %s: %w", id, err)
			}
		}
		return g, nil
	}

	if typ == "" {
		return nil, fmt.Errorf("%w: element %s has no type", ErrInvalidFieldType, id)
	}
	f := &Field{id: id, typ: typ, label: strings.TrimSpace(raw.Label), value: raw.Value}
	if f.label == "" {
		f.label = DefaultLabel(typ)
	}

	seen := make(map[ValidatorKind]struct{}, len(raw.Validators))
	for _, rv := range raw.Validators {
		if _, dup := seen[rv.Type]; dup {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateValidator, rv.Type, id)
		}
		seen[rv.Type] = struct{}{}
		v := ValidatorDefinition{Kind: rv.Type}
		var n float64
		if len(rv.Value) > 0 && string(rv.Value) != "null" && json.Unmarshal(rv.Value, &n) == nil {
			v.Value = &n
		}
		f.validators = append(f.validators, v)
	}

	values := make(map[string]struct{}, len(raw.Options))
	for _, opt := range raw.Options {
		if _, dup := values[opt.Value]; dup {
			return nil, fmt.Errorf("%w: %q on %s", ErrDuplicateOption, opt.Value, id)
		}
		values[opt.Value] = struct{}{}
		f.options = append(f.options, opt)
	}
	return f, nil
}

// UnmarshalJSON accepts either an option object or a bare string used as both
// label and value.
func (o *FieldOption) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*o = Option(s)
		return nil
	}
	type plain FieldOption
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*o = FieldOption(p)
	if o.Value == "" {
		o.Value = o.Label
	}
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}
