// Package jsonview paints view trees as JSON documents.
package jsonview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/view"
)

// Name is the registry name of this painter.
const Name = "json"

// Option configures the painter.
type Option func(*Renderer)

// WithIndent pretty-prints output with indent. An empty string produces
// compact JSON.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer paints JSON.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the painter.
func New(options ...Option) *Renderer {
	r := &Renderer{indent: "  "}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Document is the painted JSON shape.
type Document struct {
	View     *view.View            `json:"view,omitempty"`
	Theme    string                `json:"theme,omitempty"`
	Error    string                `json:"error,omitempty"`
	Warnings []diagnostics.Warning `json:"warnings,omitempty"`
}

func (r *Renderer) Render(_ context.Context, v *view.View, options render.RenderOptions) ([]byte, error) {
	if options.Silent() {
		return []byte{}, nil
	}

	doc := Document{Warnings: options.Warnings}
	if options.Theme != nil {
		doc.Theme = options.Theme.Variant
	}
	if options.Err != nil {
		doc.Error = options.Err.Error()
	} else {
		doc.View = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("jsonview: encode: %w", err)
	}
	return buf.Bytes(), nil
}
