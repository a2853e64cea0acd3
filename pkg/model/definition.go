package model

import (
	"fmt"
)

// Definition is the ordered top-level sequence of elements that describes a
// form. It is the single source of truth; control trees and generated code
// are projections of it.
type Definition struct {
	children []Element
}

var _ Container = (*Definition)(nil)

// NewDefinition builds an empty definition.
func NewDefinition() *Definition {
	return &Definition{}
}

// Len returns the number of top-level elements.
func (d *Definition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.children)
}

// Children returns the top-level elements in order. The slice is a copy; the
// elements are shared.
func (d *Definition) Children() []Element {
	if d == nil || len(d.children) == 0 {
		return nil
	}
	return append([]Element(nil), d.children...)
}

// ChildAt returns the top-level element at index.
func (d *Definition) ChildAt(index int) (Element, bool) {
	if index < 0 || index >= d.Len() {
		return nil, false
	}
	return d.children[index], true
}

// IndexOf returns the top-level position of id, or -1.
func (d *Definition) IndexOf(id string) int {
	if d == nil {
		return -1
	}
	for i, child := range d.children {
		if child.ID() == id {
			return i
		}
	}
	return -1
}

// AddChild appends el. Nil elements and ids already present anywhere in the
// tree are rejected.
func (d *Definition) AddChild(el Element) error {
	if err := d.admit(el, ""); err != nil {
		return err
	}
	d.children = append(d.children, el)
	return nil
}

// AddToGroup appends f to g, a top-level group of d. Unlike Group.AddChild
// it rejects ids already used anywhere in the tree.
func (d *Definition) AddToGroup(g *Group, f *Field) error {
	if g == nil || f == nil {
		return ErrNilElement
	}
	if el, ok := d.ChildAt(d.IndexOf(g.ID())); !ok || el != Element(g) {
		return fmt.Errorf("%w: %s", ErrGroupNotInTree, g.ID())
	}
	if err := d.admit(f, ""); err != nil {
		return err
	}
	return g.AddChild(f)
}

// InsertAfter places el right after the top-level element anchorID.
func (d *Definition) InsertAfter(anchorID string, el Element) bool {
	idx := d.IndexOf(anchorID)
	if idx < 0 || d.admit(el, "") != nil {
		return false
	}
	d.insertAt(idx+1, el)
	return true
}

// InsertAt places el at index, clamping to the valid range.
func (d *Definition) InsertAt(index int, el Element) error {
	if err := d.admit(el, ""); err != nil {
		return err
	}
	if index < 0 {
		index = 0
	}
	if index > len(d.children) {
		index = len(d.children)
	}
	d.insertAt(index, el)
	return nil
}

func (d *Definition) insertAt(index int, el Element) {
	d.children = append(d.children, nil)
	copy(d.children[index+1:], d.children[index:])
	d.children[index] = el
}

// ReplaceChild swaps the top-level element oldID for el in place. The
// replacement may reuse oldID.
func (d *Definition) ReplaceChild(oldID string, el Element) bool {
	idx := d.IndexOf(oldID)
	if idx < 0 || d.admit(el, oldID) != nil {
		return false
	}
	d.children[idx] = el
	return true
}

// RemoveChildByID removes a top-level element and returns it.
func (d *Definition) RemoveChildByID(id string) (Element, bool) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	el := d.children[idx]
	d.children = append(d.children[:idx], d.children[idx+1:]...)
	return el, true
}

// UpdateElement applies updated to the element sharing its id, searching the
// top level and one group level. Fields take every attribute of updated;
// groups only take the label. Mismatched variants are not updated.
func (d *Definition) UpdateElement(updated Element) bool {
	if updated == nil || d == nil {
		return false
	}
	for _, child := range d.children {
		if child.ID() == updated.ID() {
			return applyUpdate(child, updated)
		}
		if g, ok := child.AsGroup(); ok {
			if f, ok := g.Child(updated.ID()); ok {
				return applyUpdate(f, updated)
			}
		}
	}
	return false
}

func applyUpdate(target, updated Element) bool {
	switch target.Kind() {
	case KindField:
		src, ok := updated.AsField()
		if !ok {
			return false
		}
		dst, _ := target.AsField()
		dst.assign(src)
		return true
	case KindGroup:
		src, ok := updated.AsGroup()
		if !ok {
			return false
		}
		dst, _ := target.AsGroup()
		dst.label = src.label
		return true
	}
	return false
}

// FindChildByID searches the tree depth-first.
func (d *Definition) FindChildByID(id string) (Element, bool) {
	if d == nil {
		return nil, false
	}
	for _, child := range d.children {
		if child.ID() == id {
			return child, true
		}
		if g, ok := child.AsGroup(); ok {
			if f, ok := g.Child(id); ok {
				return f, true
			}
		}
	}
	return nil, false
}

// ParentOf returns the group holding the field id, or nil when id is top
// level or absent.
func (d *Definition) ParentOf(id string) *Group {
	if d == nil {
		return nil
	}
	for _, child := range d.children {
		if g, ok := child.AsGroup(); ok && g.IndexOf(id) >= 0 {
			return g
		}
	}
	return nil
}

// MoveChild relocates the element at from so it precedes the element that was
// at to. to == Len() moves to the end.
func (d *Definition) MoveChild(from, to int) bool {
	if d == nil {
		return false
	}
	return moveItem(d.children, from, to)
}

// AllFields flattens the tree depth-first.
func (d *Definition) AllFields() []*Field {
	if d == nil {
		return nil
	}
	var out []*Field
	for _, child := range d.children {
		switch child.Kind() {
		case KindField:
			f, _ := child.AsField()
			out = append(out, f)
		case KindGroup:
			g, _ := child.AsGroup()
			out = append(out, g.children...)
		}
	}
	return out
}

// FieldCount returns len(AllFields()).
func (d *Definition) FieldCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, child := range d.children {
		if g, ok := child.AsGroup(); ok {
			n += g.Len()
			continue
		}
		n++
	}
	return n
}

// Validate checks the structural invariants: every id is unique across the
// tree, groups hold fields only, labels are not blank.
func (d *Definition) Validate() error {
	seen := map[string]struct{}{}
	check := func(el Element) error {
		if el.ID() == "" {
			return ErrEmptyID
		}
		if _, dup := seen[el.ID()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, el.ID())
		}
		seen[el.ID()] = struct{}{}
		if el.Label() == "" {
			return fmt.Errorf("%w: %s", ErrEmptyLabel, el.ID())
		}
		return nil
	}
	for _, child := range d.Children() {
		if err := check(child); err != nil {
			return err
		}
		g, ok := child.AsGroup()
		if !ok {
			continue
		}
		for _, f := range g.children {
			if err := check(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (d *Definition) Clone() *Definition {
	out := NewDefinition()
	if d == nil || len(d.children) == 0 {
		return out
	}
	out.children = make([]Element, len(d.children))
	for i, child := range d.children {
		out.children[i] = child.cloneElement()
	}
	return out
}

// ids collects every id in the tree except those under skip (a top-level id
// about to be replaced).
func (d *Definition) ids(skip string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, child := range d.children {
		if child.ID() == skip {
			continue
		}
		out[child.ID()] = struct{}{}
		if g, ok := child.AsGroup(); ok {
			for _, f := range g.children {
				out[f.ID()] = struct{}{}
			}
		}
	}
	return out
}

// admit checks that el can join the tree without breaking id uniqueness.
func (d *Definition) admit(el Element, skip string) error {
	if el == nil {
		return ErrNilElement
	}
	if g, ok := el.AsGroup(); ok && g == nil {
		return ErrNilElement
	}
	if f, ok := el.AsField(); ok && f == nil {
		return ErrNilElement
	}
	existing := d.ids(skip)
	incoming := []string{el.ID()}
	if g, ok := el.AsGroup(); ok {
		for _, f := range g.children {
			incoming = append(incoming, f.ID())
		}
	}
	for _, id := range incoming {
		if _, dup := existing[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		existing[id] = struct{}{}
	}
	return nil
}
