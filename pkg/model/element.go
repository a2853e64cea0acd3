package model

// Element is a node of the form definition tree: either a *Field or a *Group.
// Callers switch on Kind and use AsField/AsGroup to reach the variant.
type Element interface {
	ID() string
	Label() string
	Type() InputType
	Kind() Kind
	SetLabel(label string) error
	AsField() (*Field, bool)
	AsGroup() (*Group, bool)

	cloneElement() Element
}

// Container is an ordered sequence of elements that supports reordering.
// Both the definition and its groups satisfy it.
type Container interface {
	Len() int
	ChildAt(index int) (Element, bool)
	IndexOf(id string) int
	MoveChild(from, to int) bool
}

// CloneElement returns a deep copy of el, or nil for a nil element.
func CloneElement(el Element) Element {
	if el == nil {
		return nil
	}
	return el.cloneElement()
}

// moveItem relocates items[from] so that it ends up before the element that
// was at index to. to may equal len(items) to move to the end. Forward moves
// account for the removed slot.
func moveItem[T any](items []T, from, to int) bool {
	n := len(items)
	if from == to || from < 0 || to < 0 || from >= n || to > n {
		return false
	}
	item := items[from]
	copy(items[from:], items[from+1:])
	if to > from {
		to--
	}
	copy(items[to+1:], items[to:n-1])
	items[to] = item
	return true
}
