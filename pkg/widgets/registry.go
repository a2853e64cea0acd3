package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Built-in template shapes exposed by the registry.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetCheckbox = "checkbox"
	WidgetRadio    = "radio"
)

// Matcher reports whether a shape renders the field.
type Matcher func(field *model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
}

// Registry picks the template shape of each field. Rules are kept ordered by
// descending priority; among equal priorities the most recent registration
// is consulted first.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry holding the built-in shapes.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.Register(WidgetInput, 10, typeIs(
		model.InputTypeText,
		model.InputTypePassword,
		model.InputTypeDate,
		model.InputTypeNumber,
		model.InputTypeEmail,
	))
	reg.Register(WidgetTextarea, 20, typeIs(model.InputTypeTextarea))
	reg.Register(WidgetRadio, 30, typeIs(model.InputTypeRadio))
	reg.Register(WidgetCheckbox, 30, typeIs(model.InputTypeCheckbox))
	return reg
}

// Register installs matcher for the shape name. Registering a name again
// replaces its previous rule.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	name = strings.TrimSpace(name)
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(name)
	at := sort.Search(len(r.rules), func(i int) bool {
		return r.rules[i].priority <= priority
	})
	r.rules = append(r.rules, rule{})
	copy(r.rules[at+1:], r.rules[at:])
	r.rules[at] = rule{name: name, priority: priority, match: matcher}
}

// Unregister drops the shape name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(strings.TrimSpace(name))
}

func (r *Registry) removeLocked(name string) bool {
	for i, entry := range r.rules {
		if entry.name == name {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Resolve returns the shape of field, or false when nothing matches.
func (r *Registry) Resolve(field *model.Field) (string, bool) {
	if r == nil || field == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Assign maps every resolvable field of def, grouped ones included, to its
// shape.
func (r *Registry) Assign(def *model.Definition) map[string]string {
	out := make(map[string]string)
	for _, field := range def.AllFields() {
		if name, ok := r.Resolve(field); ok {
			out[field.ID()] = name
		}
	}
	return out
}

// Names lists the registered shapes, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.rules))
	for _, entry := range r.rules {
		names = append(names, entry.name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func typeIs(types ...model.InputType) Matcher {
	return func(field *model.Field) bool {
		for _, t := range types {
			if field.Type() == t {
				return true
			}
		}
		return false
	}
}
