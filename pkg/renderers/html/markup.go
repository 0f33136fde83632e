package html

import (
	htmlstd "html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/view"
)

// Markup renders nodes as HTML fragments. Every author- or data-supplied
// string is escaped; label styling is filtered through a bluemonday policy.
func Markup(nodes []*view.Node) string {
	var b strings.Builder
	writeNodes(&b, nodes, 0)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []*view.Node, depth int) {
	for _, node := range nodes {
		if node != nil {
			writeNode(b, node, depth)
		}
	}
}

func writeNode(b *strings.Builder, node *view.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch node.Kind {
	case view.KindValue:
		b.WriteString(indent)
		b.WriteString(`<div class="fv-field fv-field--`)
		b.WriteString(esc(string(node.Type)))
		if node.HideLabel || node.Label == "" {
			b.WriteString(` fv-field--no-label`)
		}
		b.WriteString(`"`)
		writeDataAttrs(b, node)
		if node.Checked != nil {
			if *node.Checked {
				b.WriteString(` data-checked="true"`)
			} else {
				b.WriteString(` data-checked="false"`)
			}
		}
		b.WriteString(">")
		if !node.HideLabel && node.Label != "" {
			b.WriteString(`<span class="fv-label">`)
			b.WriteString(esc(node.Label))
			if node.Required {
				b.WriteString(`<abbr class="fv-required" title="required">*</abbr>`)
			}
			b.WriteString(`</span>`)
		}
		b.WriteString(`<span class="fv-value`)
		if node.Missing {
			b.WriteString(` fv-value--missing`)
		}
		b.WriteString(`">`)
		b.WriteString(esc(node.Value))
		b.WriteString("</span></div>\n")

	case view.KindLabel:
		b.WriteString(indent)
		b.WriteString(`<div class="fv-heading"`)
		writeDataAttrs(b, node)
		b.WriteString(">")
		b.WriteString(styledLabel(node.Value, node.Style))
		b.WriteString("</div>\n")

	case view.KindGroup:
		b.WriteString(indent)
		b.WriteString(`<section class="fv-group"`)
		writeDataAttrs(b, node)
		b.WriteString(">\n")
		writeTitle(b, node, "fv-group__title", depth+1)
		b.WriteString(indent)
		b.WriteString("  <div class=\"fv-group__body\">\n")
		writeNodes(b, node.Children, depth+2)
		b.WriteString(indent)
		b.WriteString("  </div>\n")
		b.WriteString(indent)
		b.WriteString("</section>\n")

	case view.KindTwoColumn:
		b.WriteString(indent)
		b.WriteString(`<div class="fv-columns"`)
		writeDataAttrs(b, node)
		if style := columnStyle(node.LeftWidth, node.Gap); style != "" {
			b.WriteString(` style="`)
			b.WriteString(esc(style))
			b.WriteString(`"`)
		}
		b.WriteString(">\n")
		for _, column := range []struct {
			class string
			nodes []*view.Node
		}{{"fv-column fv-column--left", node.Left}, {"fv-column fv-column--right", node.Right}} {
			b.WriteString(indent)
			b.WriteString(`  <div class="`)
			b.WriteString(column.class)
			b.WriteString("\">\n")
			writeNodes(b, column.nodes, depth+2)
			b.WriteString(indent)
			b.WriteString("  </div>\n")
		}
		b.WriteString(indent)
		b.WriteString("</div>\n")

	case view.KindWidget:
		b.WriteString(indent)
		b.WriteString(`<section class="fv-widget"`)
		writeDataAttrs(b, node)
		if node.ResourceType != "" {
			b.WriteString(` data-resource-type="`)
			b.WriteString(esc(node.ResourceType))
			b.WriteString(`"`)
		}
		if node.Icon != "" {
			b.WriteString(` data-icon="`)
			b.WriteString(esc(node.Icon))
			b.WriteString(`"`)
		}
		b.WriteString(">\n")
		writeTitle(b, node, "fv-widget__title", depth+1)
		writeNodes(b, node.Children, depth+1)
		b.WriteString(indent)
		b.WriteString("</section>\n")

	case view.KindItem:
		b.WriteString(indent)
		b.WriteString(`<article class="fv-item">`)
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(`  <h4 class="fv-item__title">`)
		b.WriteString(esc(node.Label))
		b.WriteString("</h4>\n")
		writeNodes(b, node.Children, depth+1)
		b.WriteString(indent)
		b.WriteString("</article>\n")

	case view.KindEmpty, view.KindPlaceholder:
		b.WriteString(indent)
		b.WriteString(`<p class="fv-`)
		b.WriteString(string(node.Kind))
		b.WriteString(`"`)
		writeDataAttrs(b, node)
		b.WriteString(">")
		b.WriteString(esc(node.Message))
		b.WriteString("</p>\n")

	default:
		b.WriteString(indent)
		b.WriteString(`<div class="fv-diagnostic fv-diagnostic--`)
		b.WriteString(esc(string(node.Kind)))
		b.WriteString(`" role="alert"`)
		writeDataAttrs(b, node)
		b.WriteString(">")
		b.WriteString(esc(node.Message))
		b.WriteString("</div>\n")
	}
}

func writeDataAttrs(b *strings.Builder, node *view.Node) {
	if node.FieldID != "" {
		b.WriteString(` data-field-id="`)
		b.WriteString(esc(node.FieldID))
		b.WriteString(`"`)
	}
}

func writeTitle(b *strings.Builder, node *view.Node, class string, depth int) {
	if node.HideLabel || node.Label == "" {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(`<h3 class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(esc(node.Label))
	if node.Kind == view.KindWidget && node.ResourceType != "" {
		b.WriteString(` <span class="fv-badge">`)
		b.WriteString(esc(node.ResourceType))
		b.WriteString(`</span>`)
	}
	b.WriteString("</h3>\n")
}

func esc(s string) string {
	return htmlstd.EscapeString(s)
}

var lengthPattern = regexp.MustCompile(`^\d+(\.\d+)?(px|em|rem|%|fr|pt|vw)?$`)

// cssLength accepts plain numbers (treated as pixels) and simple unit
// lengths; anything else is dropped.
func cssLength(raw string) string {
	raw = strings.TrimSpace(raw)
	if !lengthPattern.MatchString(raw) {
		return ""
	}
	if model.Dimension(raw).IsNumeric() {
		return raw + "px"
	}
	return raw
}

func columnStyle(leftWidth, gap string) string {
	var parts []string
	if width := cssLength(leftWidth); width != "" {
		parts = append(parts, "grid-template-columns: "+width+" 1fr")
	}
	if g := cssLength(gap); g != "" {
		parts = append(parts, "gap: "+g)
	}
	return strings.Join(parts, "; ")
}

func styledLabel(text string, style *view.LabelStyle) string {
	if style == nil {
		return `<span class="fv-heading__text">` + esc(text) + `</span>`
	}

	var decls []string
	if size := cssLength(style.FontSize); size != "" {
		decls = append(decls, "font-size: "+size)
	}
	if weight := strings.TrimSpace(style.FontWeight); weight != "" {
		decls = append(decls, "font-weight: "+weight)
	}
	if color := strings.TrimSpace(style.Color); color != "" {
		decls = append(decls, "color: "+color)
	}

	span := `<span class="fv-heading__text"`
	if len(decls) > 0 {
		span += ` style="` + esc(strings.Join(decls, "; ")) + `"`
	}
	span += `>` + esc(text) + `</span>`
	return labelPolicy().Sanitize(span)
}

var (
	labelOnce sync.Once
	labelPol  *bluemonday.Policy
)

// labelPolicy keeps heading spans and the three author-controlled style
// properties, validated by bluemonday's built-in CSS value handlers.
func labelPolicy() *bluemonday.Policy {
	labelOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("span")
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^fv-heading__text$`)).OnElements("span")
		policy.AllowStyles("font-size", "font-weight", "color").OnElements("span")
		labelPol = policy
	})
	return labelPol
}
