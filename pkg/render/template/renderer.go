package template

import (
	"io"
)

// PageRenderer executes named page templates or inline template source.
// When out is given the result is also streamed to each writer.
type PageRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
}

// TemplateRenderer is the full engine surface the html painter accepts. Any
// go-template compatible engine satisfies it.
type TemplateRenderer interface {
	PageRenderer

	// Render dispatches to RenderString or RenderTemplate depending on
	// whether name looks like inline source.
	Render(name string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
