package model

import (
	"fmt"
	"strings"
)

// Group is a labelled container of fields. Groups never nest.
type Group struct {
	id       string
	label    string
	children []*Field
}

var (
	_ Element   = (*Group)(nil)
	_ Container = (*Group)(nil)
)

// NewGroup builds an empty group with a generated id. A blank label falls back
// to the default group label.
func NewGroup(label string) *Group {
	return NewGroupWithID(NewID(), label)
}

// NewGroupWithID builds an empty group with the supplied id.
func NewGroupWithID(id, label string) *Group {
	g := &Group{id: strings.TrimSpace(id), label: strings.TrimSpace(label)}
	if g.id == "" {
		g.id = NewID()
	}
	if g.label == "" {
		g.label = DefaultLabel(InputTypeGroup)
	}
	return g
}

func (g *Group) ID() string      { return g.id }
func (g *Group) Label() string   { return g.label }
func (g *Group) Type() InputType { return InputTypeGroup }
func (g *Group) Kind() Kind      { return KindGroup }

func (g *Group) AsField() (*Field, bool) { return nil, false }
func (g *Group) AsGroup() (*Group, bool) { return g, true }

// SetLabel trims and stores the label, rejecting blank values.
func (g *Group) SetLabel(label string) error {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ErrEmptyLabel
	}
	g.label = trimmed
	return nil
}

// Len returns the number of children.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.children)
}

// IsEmpty reports whether the group has no children.
func (g *Group) IsEmpty() bool { return g.Len() == 0 }

// Children returns the fields in order. The slice is a copy; the fields are
// shared.
func (g *Group) Children() []*Field {
	if g == nil || len(g.children) == 0 {
		return nil
	}
	return append([]*Field(nil), g.children...)
}

// AddChild appends a field, checking ids within the group only. Once the
// group is in a definition, add through Definition.AddToGroup so ids stay
// unique across the tree.
func (g *Group) AddChild(f *Field) error {
	if f == nil {
		return ErrNilElement
	}
	if g.IndexOf(f.ID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, f.ID())
	}
	g.children = append(g.children, f)
	return nil
}

// InsertChild places f at index, clamping to the valid range.
func (g *Group) InsertChild(index int, f *Field) error {
	if f == nil {
		return ErrNilElement
	}
	if g.IndexOf(f.ID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, f.ID())
	}
	if index < 0 {
		index = 0
	}
	if index > len(g.children) {
		index = len(g.children)
	}
	g.children = append(g.children, nil)
	copy(g.children[index+1:], g.children[index:])
	g.children[index] = f
	return nil
}

// RemoveChild removes the field with the given id and returns it.
func (g *Group) RemoveChild(id string) (*Field, bool) {
	idx := g.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	f := g.children[idx]
	g.children = append(g.children[:idx], g.children[idx+1:]...)
	return f, true
}

// Child returns the direct child with the given id.
func (g *Group) Child(id string) (*Field, bool) {
	idx := g.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	return g.children[idx], true
}

// ChildAt returns the child at index.
func (g *Group) ChildAt(index int) (Element, bool) {
	f, ok := g.FieldAt(index)
	if !ok {
		return nil, false
	}
	return f, true
}

// FieldAt is ChildAt without the interface conversion.
func (g *Group) FieldAt(index int) (*Field, bool) {
	if index < 0 || index >= g.Len() {
		return nil, false
	}
	return g.children[index], true
}

// IndexOf returns the position of the child with the given id, or -1.
func (g *Group) IndexOf(id string) int {
	if g == nil {
		return -1
	}
	for i, child := range g.children {
		if child.ID() == id {
			return i
		}
	}
	return -1
}

// UpdateChild overwrites the attributes of the child sharing updated's id.
func (g *Group) UpdateChild(updated *Field) bool {
	if updated == nil {
		return false
	}
	child, ok := g.Child(updated.ID())
	if !ok {
		return false
	}
	child.assign(updated)
	return true
}

// FindChildByID is Child for callers holding an Element.
func (g *Group) FindChildByID(id string) (Element, bool) {
	f, ok := g.Child(id)
	if !ok {
		return nil, false
	}
	return f, true
}

// MoveChild reorders children with the same bounds as the definition.
func (g *Group) MoveChild(from, to int) bool {
	if g == nil {
		return false
	}
	return moveItem(g.children, from, to)
}

// Clone returns a deep copy with the same ids.
func (g *Group) Clone() *Group {
	out := &Group{id: g.id, label: g.label}
	if len(g.children) > 0 {
		out.children = make([]*Field, len(g.children))
		for i, child := range g.children {
			out.children[i] = child.Clone()
		}
	}
	return out
}

func (g *Group) cloneElement() Element { return g.Clone() }
