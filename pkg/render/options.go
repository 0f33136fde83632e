package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
)

// RenderOptions carry per-pass presentation data alongside the view tree.
type RenderOptions struct {
	// Title overrides the heading; painters fall back to the template name.
	Title string
	// Theme holds the resolved colour scheme. Painters that have no use for
	// styling ignore it.
	Theme *theme.RendererConfig
	// Err is the pass-level failure (decode, template lookup). When set the
	// view may be nil and painters show an error panel instead of fields.
	Err error
	// ShowErrors controls whether Err is painted. When false a failed pass
	// paints nothing.
	ShowErrors bool
	// Warnings collected while building the view.
	Warnings []diagnostics.Warning
}

// Failed reports whether the pass ended in an error.
func (o RenderOptions) Failed() bool {
	return o.Err != nil
}

// Silent reports whether a painter should produce empty output.
func (o RenderOptions) Silent() bool {
	return o.Err != nil && !o.ShowErrors
}
