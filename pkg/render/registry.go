package render

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Registry resolves renderers by name or alias. Lookups are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Renderer
	aliases map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Renderer),
		aliases: make(map[string]string),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds renderer under its Name() plus any aliases. Names and aliases
// share one namespace; a collision fails without registering anything.
func (r *Registry) Register(renderer Renderer, aliases ...string) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := normalize(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{name}, aliases...)
	for i, key := range keys {
		key = normalize(key)
		if key == "" {
			return errors.New("render: alias cannot be empty")
		}
		if r.takenLocked(key) {
			return fmt.Errorf("render: %q already registered", key)
		}
		keys[i] = key
	}

	r.byName[name] = renderer
	for _, alias := range keys[1:] {
		r.aliases[alias] = name
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer, aliases ...string) {
	if err := r.Register(renderer, aliases...); err != nil {
		panic(err)
	}
}

func (r *Registry) takenLocked(key string) bool {
	if _, ok := r.byName[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

// Get resolves name or an alias. The error wraps ErrUnknownFormat.
func (r *Registry) Get(name string) (Renderer, error) {
	key := normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[key]; ok {
		key = target
	}
	renderer, ok := r.byName[key]
	if !ok {
		return nil, fmt.Errorf("render: %w %q", ErrUnknownFormat, name)
	}
	return renderer, nil
}

// Has reports whether name or an alias resolves.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// List returns the canonical renderer names, sorted. Aliases are omitted.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Aliases returns the aliases pointing at name, sorted.
func (r *Registry) Aliases(name string) []string {
	key := normalize(name)

	r.mu.RLock()
	var out []string
	for alias, target := range r.aliases {
		if target == key {
			out = append(out, alias)
		}
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Render resolves name and renders the subset of def selected by options,
// returning the renderer's content type with the payload.
func (r *Registry) Render(ctx context.Context, name string, def *model.Definition, options RenderOptions) ([]byte, string, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return nil, "", err
	}
	if def == nil {
		def = model.NewDefinition()
	}
	out, err := renderer.Render(ctx, ApplySubset(def, options.Subset), options)
	if err != nil {
		return nil, "", fmt.Errorf("render %s: %w", renderer.Name(), err)
	}
	return out, renderer.ContentType(), nil
}
