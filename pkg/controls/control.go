package controls

import (
	"fmt"
	"sort"
)

// Control is a node of the live control tree: a *FieldControl or a
// *GroupControl.
type Control interface {
	Value() any
	Valid() bool
	control()
}

// ValidationError describes one failed rule on a FieldControl.
type ValidationError struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Limit   float64 `json:"limit,omitempty"`
	Actual  float64 `json:"actual,omitempty"`
}

func (e ValidationError) Error() string { return e.Message }

// ValidatorFunc checks a value and returns nil when it passes.
type ValidatorFunc func(value any) *ValidationError

// FieldControl holds the current value of one field and the validation
// functions derived from its rules.
type FieldControl struct {
	value      any
	validators []ValidatorFunc
	errors     []ValidationError
}

// NewFieldControl seeds a control with value and validates it.
func NewFieldControl(value any, validators ...ValidatorFunc) *FieldControl {
	c := &FieldControl{value: value, validators: validators}
	c.Validate()
	return c
}

func (c *FieldControl) control() {}

// Value returns the current value.
func (c *FieldControl) Value() any { return c.value }

// SetValue stores v and revalidates.
func (c *FieldControl) SetValue(v any) {
	c.value = v
	c.Validate()
}

// SetValidators swaps the validation functions and revalidates.
func (c *FieldControl) SetValidators(validators ...ValidatorFunc) {
	c.validators = validators
	c.Validate()
}

// Validate reruns every validation function against the current value.
func (c *FieldControl) Validate() []ValidationError {
	c.errors = nil
	for _, fn := range c.validators {
		if err := fn(c.value); err != nil {
			c.errors = append(c.errors, *err)
		}
	}
	return c.Errors()
}

// Errors returns the failures recorded by the last validation.
func (c *FieldControl) Errors() []ValidationError {
	if len(c.errors) == 0 {
		return nil
	}
	return append([]ValidationError(nil), c.errors...)
}

// Valid reports whether the last validation passed.
func (c *FieldControl) Valid() bool { return len(c.errors) == 0 }

// GroupControl is an ordered keyed collection of controls. Keys are element
// ids.
type GroupControl struct {
	keys     []string
	controls map[string]Control
}

// NewGroupControl builds an empty group.
func NewGroupControl() *GroupControl {
	return &GroupControl{controls: make(map[string]Control)}
}

func (g *GroupControl) control() {}

// Len returns the number of entries.
func (g *GroupControl) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Keys returns the entry keys in insertion order.
func (g *GroupControl) Keys() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.keys...)
}

// Contains reports whether key is registered.
func (g *GroupControl) Contains(key string) bool {
	if g == nil {
		return false
	}
	_, ok := g.controls[key]
	return ok
}

// Get returns the entry for key.
func (g *GroupControl) Get(key string) (Control, bool) {
	if g == nil {
		return nil, false
	}
	c, ok := g.controls[key]
	return c, ok
}

// Field returns the leaf entry for key.
func (g *GroupControl) Field(key string) (*FieldControl, bool) {
	c, ok := g.Get(key)
	if !ok {
		return nil, false
	}
	fc, ok := c.(*FieldControl)
	return fc, ok
}

// Group returns the nested composite entry for key.
func (g *GroupControl) Group(key string) (*GroupControl, bool) {
	c, ok := g.Get(key)
	if !ok {
		return nil, false
	}
	gc, ok := c.(*GroupControl)
	return gc, ok
}

// AddControl registers c under key. An existing entry is never replaced.
func (g *GroupControl) AddControl(key string, c Control) bool {
	if g == nil || c == nil || g.Contains(key) {
		return false
	}
	if g.controls == nil {
		g.controls = make(map[string]Control)
	}
	g.controls[key] = c
	g.keys = append(g.keys, key)
	return true
}

// RemoveControl unregisters key and returns the removed control.
func (g *GroupControl) RemoveControl(key string) (Control, bool) {
	c, ok := g.Get(key)
	if !ok {
		return nil, false
	}
	delete(g.controls, key)
	for i, k := range g.keys {
		if k == key {
			g.keys = append(g.keys[:i], g.keys[i+1:]...)
			break
		}
	}
	return c, true
}

// Find looks up a leaf control by field id in this scope and one nested
// scope down.
func (g *GroupControl) Find(id string) (*FieldControl, bool) {
	if fc, ok := g.Field(id); ok {
		return fc, true
	}
	for _, key := range g.Keys() {
		if nested, ok := g.Group(key); ok {
			if fc, ok := nested.Field(id); ok {
				return fc, true
			}
		}
	}
	return nil, false
}

// Value returns the values of every entry keyed by id.
func (g *GroupControl) Value() any {
	out := make(map[string]any, g.Len())
	if g == nil {
		return out
	}
	for _, key := range g.keys {
		out[key] = g.controls[key].Value()
	}
	return out
}

// Valid reports whether every entry is valid.
func (g *GroupControl) Valid() bool {
	if g == nil {
		return true
	}
	for _, c := range g.controls {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Errors collects the failures of every leaf keyed by dotted path.
func (g *GroupControl) Errors() map[string][]ValidationError {
	out := map[string][]ValidationError{}
	g.collectErrors("", out)
	return out
}

func (g *GroupControl) collectErrors(prefix string, out map[string][]ValidationError) {
	if g == nil {
		return
	}
	for _, key := range g.keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch c := g.controls[key].(type) {
		case *FieldControl:
			if errs := c.Errors(); len(errs) > 0 {
				out[path] = errs
			}
		case *GroupControl:
			c.collectErrors(path, out)
		}
	}
}

// String renders the key layout, e.g. "{a, g{b, c}}". Tests use it to compare
// scopes.
func (g *GroupControl) String() string {
	if g == nil {
		return "{}"
	}
	s := "{"
	for i, key := range g.keys {
		if i > 0 {
			s += ", "
		}
		s += key
		if nested, ok := g.controls[key].(*GroupControl); ok {
			s += nested.String()
		}
	}
	return s + "}"
}

// SortedErrorPaths lists the dotted paths with failures in lexical order.
func SortedErrorPaths(errs map[string][]ValidationError) []string {
	paths := make([]string, 0, len(errs))
	for path := range errs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

var _ fmt.Stringer = (*GroupControl)(nil)
