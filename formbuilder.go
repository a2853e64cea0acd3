// Package formbuilder is the entry point for embedding the form builder: it
// opens a stored definition as an editing session and renders definitions
// through the built-in renderers.
package formbuilder

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// Definition aliases model.Definition for callers of the root package.
type Definition = model.Definition

// Output aliases the generated builder code and HTML template pair.
type Output = codegen.Output

// RenderOptions describes per-request renderer overrides.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for partial rendering by group,
// kind or field id.
type FieldSubset = render.FieldSubset

// Generate renders both snippets for def.
func Generate(def *Definition) Output {
	return codegen.Generate(def)
}

// Render renders def with the built-in renderer named format and returns the
// output with its content type.
func Render(ctx context.Context, format string, def *Definition, opts RenderOptions) ([]byte, string, error) {
	reg, err := render.NewDefaultRegistry()
	if err != nil {
		return nil, "", err
	}
	return reg.Render(ctx, format, def, opts)
}

// Open opens the backend described by cfg and loads the definition stored
// under the session key. A corrupt blob is not fatal: the session starts
// empty and the returned error wraps editor.ErrCorruptDefinition. The caller
// owns the returned store and must close it.
func Open(ctx context.Context, cfg store.Config, opts ...editor.Option) (*editor.Session, store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	session := editor.New(st, opts...)
	if err := session.Load(ctx); err != nil {
		if errors.Is(err, editor.ErrCorruptDefinition) {
			return session, st, err
		}
		st.Close()
		return nil, nil, fmt.Errorf("formbuilder: load: %w", err)
	}
	return session, st, nil
}
