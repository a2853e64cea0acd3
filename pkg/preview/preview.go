// Package preview renders a standalone HTML page describing a form
// definition: its structure, the generated builder code and template, and
// the serialized definition.
package preview

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

// DefaultTitle is used when Render receives an empty title.
const DefaultTitle = "Form preview"

const defaultTemplate = "page"

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the embedded template files rooted at the templates
// directory, for callers that want to override only some of them.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Option configures a Page.
type Option func(*Page)

// WithEngine replaces the template engine. The engine must be able to
// resolve the configured template name.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(p *Page) {
		if engine != nil {
			p.engine = engine
		}
	}
}

// WithGenerator replaces the code generator.
func WithGenerator(gen *codegen.Generator) Option {
	return func(p *Page) {
		if gen != nil {
			p.generator = gen
		}
	}
}

// WithTemplateName selects the template rendered by the page.
func WithTemplateName(name string) Option {
	return func(p *Page) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			p.template = trimmed
		}
	}
}

// Page renders preview documents. It is safe for concurrent use.
type Page struct {
	engine    template.TemplateRenderer
	generator *codegen.Generator
	template  string
}

// New builds a Page backed by the embedded templates unless an engine is
// supplied.
func New(opts ...Option) (*Page, error) {
	p := &Page{template: defaultTemplate}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(Templates()))
		if err != nil {
			return nil, fmt.Errorf("preview: template engine: %w", err)
		}
		p.engine = engine
	}
	if p.generator == nil {
		p.generator = codegen.New()
	}
	return p, nil
}

// Render produces the preview document for def.
func (p *Page) Render(ctx context.Context, def *model.Definition, title string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if def == nil {
		def = model.NewDefinition()
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	raw, err := def.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("preview: encode definition: %w", err)
	}
	out := p.generator.Generate(def)

	html, err := p.engine.RenderTemplate(p.template, map[string]any{
		"title":           title,
		"field_count":     def.FieldCount(),
		"elements":        outline(def),
		"definition_json": string(raw),
		"builder_code":    out.BuilderCode,
		"html_template":   out.HTMLTemplate,
	})
	if err != nil {
		return nil, fmt.Errorf("preview: render: %w", err)
	}
	return []byte(html), nil
}

type elementView struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Type       string        `json:"type"`
	Group      bool          `json:"group"`
	Validators []string      `json:"validators"`
	Children   []elementView `json:"children"`
}

func outline(def *model.Definition) []elementView {
	views := make([]elementView, 0, def.Len())
	for _, el := range def.Children() {
		if grp, ok := el.AsGroup(); ok {
			view := elementView{ID: grp.ID(), Label: grp.Label(), Type: string(grp.Type()), Group: true}
			for _, child := range grp.Children() {
				view.Children = append(view.Children, fieldView(child))
			}
			views = append(views, view)
			continue
		}
		if f, ok := el.AsField(); ok {
			views = append(views, fieldView(f))
		}
	}
	return views
}

func fieldView(f *model.Field) elementView {
	view := elementView{ID: f.ID(), Label: f.Label(), Type: string(f.Type())}
	for _, v := range f.Validators() {
		view.Validators = append(view.Validators, v.String())
	}
	return view
}
