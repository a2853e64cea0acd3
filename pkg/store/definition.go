package store

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Load reads and parses the definition stored under key. An absent key
// yields an empty definition. A malformed blob yields an empty definition
// together with an error wrapping model.ErrInvalidDefinition, so callers can
// report the problem and carry on with a known-empty state.
func Load(ctx context.Context, s Store, key string) (*model.Definition, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return model.NewDefinition(), err
	}
	if !ok || raw == "" {
		return model.NewDefinition(), nil
	}
	def, err := model.FromJSON([]byte(raw))
	if err != nil {
		return model.NewDefinition(), fmt.Errorf("store: load %q: %w", key, err)
	}
	return def, nil
}

// Save serializes def and stores it under key.
func Save(ctx context.Context, s Store, key string, def *model.Definition) error {
	if def == nil {
		def = model.NewDefinition()
	}
	raw, err := def.ToJSON()
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
