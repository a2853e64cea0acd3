package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer converts a form definition into a byte representation (builder
// code, HTML, JSON, an OpenAPI document, a preview page).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, def *model.Definition, options RenderOptions) ([]byte, error)
}
