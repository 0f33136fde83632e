// Package text paints view trees as indented plain text for terminals and
// logs.
package text

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/view"
)

// Name is the registry name of this painter.
const Name = "text"

// Option configures the painter.
type Option func(*Renderer)

// WithIndent sets the indentation unit. The default is two spaces.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithWarnings toggles the trailing warnings section.
func WithWarnings(enabled bool) Option {
	return func(r *Renderer) {
		r.warnings = enabled
	}
}

// Renderer paints plain text.
type Renderer struct {
	indent   string
	warnings bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the painter.
func New(options ...Option) *Renderer {
	r := &Renderer{indent: "  ", warnings: true}
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
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, v *view.View, options render.RenderOptions) ([]byte, error) {
	if options.Silent() {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if options.Failed() || v == nil {
		message := "nothing to preview"
		if options.Err != nil {
			message = options.Err.Error()
		}
		fmt.Fprintf(&buf, "Error: %s\n", message)
		return buf.Bytes(), nil
	}

	title := options.Title
	if title == "" {
		title = v.TemplateName
	}
	heading := title
	if v.ResourceType != "" {
		heading += " [" + v.ResourceType + "]"
	}
	buf.WriteString(heading + "\n")
	buf.WriteString(strings.Repeat("=", len([]rune(heading))) + "\n")
	if desc := strings.TrimSpace(v.Description); desc != "" {
		buf.WriteString(desc + "\n\n")
	}

	r.writeNodes(&buf, v.Nodes, 0)

	if r.warnings && len(options.Warnings) > 0 {
		fmt.Fprintf(&buf, "\nWarnings (%d):\n", len(options.Warnings))
		for _, w := range options.Warnings {
			line := fmt.Sprintf("%s- [%s] %s", r.indent, w.Code, w.Message)
			if w.FieldID != "" {
				line += " (" + w.FieldID + ")"
			}
			if w.Detail != "" {
				line += ": " + w.Detail
			}
			buf.WriteString(line + "\n")
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeNodes(buf *bytes.Buffer, nodes []*view.Node, depth int) {
	for _, node := range nodes {
		if node != nil {
			r.writeNode(buf, node, depth)
		}
	}
}

func (r *Renderer) writeNode(buf *bytes.Buffer, node *view.Node, depth int) {
	pad := strings.Repeat(r.indent, depth)
	label := node.Label
	if node.HideLabel {
		label = ""
	}

	switch node.Kind {
	case view.KindValue:
		if label == "" {
			buf.WriteString(pad + node.Value + "\n")
			return
		}
		buf.WriteString(pad + label + ": " + node.Value + "\n")
	case view.KindLabel:
		buf.WriteString(pad + strings.ToUpper(node.Value) + "\n")
	case view.KindGroup:
		if label != "" {
			buf.WriteString(pad + label + "\n")
		}
		r.writeNodes(buf, node.Children, depth+1)
	case view.KindTwoColumn:
		r.writeNodes(buf, node.Left, depth)
		r.writeNodes(buf, node.Right, depth)
	case view.KindWidget:
		if label != "" {
			line := pad + label
			if node.ResourceType != "" {
				line += " (" + node.ResourceType + ")"
			}
			buf.WriteString(line + "\n")
		}
		r.writeNodes(buf, node.Children, depth+1)
	case view.KindItem:
		buf.WriteString(pad + "- " + node.Label + "\n")
		r.writeNodes(buf, node.Children, depth+1)
	case view.KindEmpty, view.KindPlaceholder:
		buf.WriteString(pad + "(" + node.Message + ")\n")
	default:
		buf.WriteString(pad + "! " + node.Message + "\n")
	}
}
