package render

import (
	"context"

	"github.com/goliatone/go-fhirview/pkg/view"
)

// Renderer paints a view tree into bytes (HTML, text, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, v *view.View, options RenderOptions) ([]byte, error)
}
