// Package fhirview renders FHIR resources through author-defined display
// templates. It re-exports the common entry points of pkg/preview so callers
// can start from a single import.
package fhirview

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-fhirview/pkg/preview"
	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/renderers/html"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

// Request describes one render pass.
type Request = preview.Request

// Result is a built, unpainted pass.
type Result = preview.Result

// Output is a painted pass.
type Output = preview.Output

// Option customises a Previewer.
type Option = preview.Option

// RenderOptions are handed to painters.
type RenderOptions = render.RenderOptions

// NewPreviewer exposes the preview constructor from the top-level module.
func NewPreviewer(options ...Option) *preview.Previewer {
	return preview.New(options...)
}

// Generate paints data through the named template of an encoded workspace.
// An empty rendererName selects HTML.
func Generate(ctx context.Context, payload, templateName string, data any, rendererName string, options ...Option) ([]byte, error) {
	return preview.New(options...).Generate(ctx, Request{
		Workspace: payload,
		Template:  templateName,
		Data:      data,
		Renderer:  rendererName,
	})
}

// GenerateFromDocument encodes a JSON or YAML workspace document and then
// behaves like Generate.
func GenerateFromDocument(ctx context.Context, document []byte, templateName string, data any, rendererName string, options ...Option) ([]byte, error) {
	payload, err := workspace.EncodeDocument(document)
	if err != nil {
		return nil, err
	}
	return Generate(ctx, payload, templateName, data, rendererName, options...)
}

// EmbeddedTemplates exposes the HTML painter's page templates so callers can
// copy or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet served alongside HTML previews.
//
// Typical mount:
//
//	mux.Handle("/assets/fhirview/",
//	  http.StripPrefix("/assets/fhirview/",
//	    http.FileServerFS(fhirview.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
