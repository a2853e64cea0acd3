package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Built-in renderer names.
const (
	FormatBuilder = "builder"
	FormatHTML    = "html"
	FormatJSON    = "json"
	FormatOpenAPI = "openapi"
	FormatPreview = "preview"
)

// Func adapts a function to the Renderer interface.
type Func struct {
	name        string
	contentType string
	fn          func(ctx context.Context, def *model.Definition, options RenderOptions) ([]byte, error)
}

// NewFunc builds a named renderer from fn.
func NewFunc(name, contentType string, fn func(context.Context, *model.Definition, RenderOptions) ([]byte, error)) *Func {
	return &Func{name: name, contentType: contentType, fn: fn}
}

func (f *Func) Name() string        { return f.name }
func (f *Func) ContentType() string { return f.contentType }

func (f *Func) Render(ctx context.Context, def *model.Definition, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fn(ctx, def, options)
}

// RegisterBuiltins adds the built-in renderers and their aliases to reg.
func RegisterBuiltins(reg *Registry, gen *codegen.Generator, page *preview.Page) error {
	if gen == nil {
		gen = codegen.New()
	}
	if page == nil {
		var err error
		if page, err = preview.New(preview.WithGenerator(gen)); err != nil {
			return err
		}
	}

	builtins := []struct {
		renderer Renderer
		aliases  []string
	}{
		{NewFunc(FormatBuilder, "text/plain; charset=utf-8", func(_ context.Context, def *model.Definition, _ RenderOptions) ([]byte, error) {
			return []byte(gen.BuilderCode(def)), nil
		}), []string{"ts", "typescript"}},
		{NewFunc(FormatHTML, "text/plain; charset=utf-8", func(_ context.Context, def *model.Definition, _ RenderOptions) ([]byte, error) {
			return []byte(gen.HTMLTemplate(def)), nil
		}), []string{"template"}},
		{NewFunc(FormatJSON, "application/json", func(_ context.Context, def *model.Definition, _ RenderOptions) ([]byte, error) {
			return json.MarshalIndent(def, "", "  ")
		}), nil},
		{NewFunc(FormatOpenAPI, "application/json", func(ctx context.Context, def *model.Definition, options RenderOptions) ([]byte, error) {
			doc, err := schema.Document(ctx, def, schema.Options{Title: options.Title})
			if err != nil {
				return nil, err
			}
			return json.MarshalIndent(doc, "", "  ")
		}), []string{"oas"}},
		{NewFunc(FormatPreview, "text/html; charset=utf-8", func(ctx context.Context, def *model.Definition, options RenderOptions) ([]byte, error) {
			return page.Render(ctx, def, options.Title)
		}), []string{"page"}},
	}
	for _, b := range builtins {
		if err := reg.Register(b.renderer, b.aliases...); err != nil {
			return fmt.Errorf("render: register builtin: %w", err)
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry holding the built-in renderers.
func NewDefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg, nil, nil); err != nil {
		return nil, err
	}
	return reg, nil
}
