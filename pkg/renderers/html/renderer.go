// Package html paints view trees as standalone, themed HTML pages.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/render"
	rendertemplate "github.com/goliatone/go-fhirview/pkg/render/template"
	"github.com/goliatone/go-fhirview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-fhirview/pkg/theme"
	"github.com/goliatone/go-fhirview/pkg/view"
)

// Name is the registry name of this painter.
const Name = "html"

const (
	defaultPageTemplate  = "page.tmpl"
	defaultErrorTemplate = "error.tmpl"
)

// Option configures the painter.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       *string
	markdown         goldmark.Markdown
}

// WithTemplatesFS replaces the embedded page templates.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads page templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet replaces the inlined stylesheet. An empty string omits it.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// WithMarkdown overrides the goldmark instance used for descriptions.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(cfg *config) {
		cfg.markdown = md
	}
}

// Renderer paints HTML.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
	markdown   goldmark.Markdown
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the painter.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		templates = engine
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}
	md := cfg.markdown
	if md == nil {
		md = goldmark.New()
	}

	return &Renderer{templates: templates, stylesheet: stylesheet, markdown: md}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render paints v. Failed passes paint an error page, or nothing when
// options.ShowErrors is false.
func (r *Renderer) Render(_ context.Context, v *view.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if options.Silent() {
		return []byte{}, nil
	}

	data := map[string]any{
		"title":      pageTitle(v, options),
		"stylesheet": r.stylesheet,
		"scheme":     "",
		"css_vars":   map[string]string{},
	}
	templateName := defaultPageTemplate
	errorTemplate := defaultErrorTemplate
	if cfg := options.Theme; cfg != nil {
		data["scheme"] = cfg.Variant
		data["css_vars"] = cfg.CSSVars
		if name := cfg.Partials[theme.PartialPage]; name != "" {
			templateName = name
		}
		if name := cfg.Partials[theme.PartialError]; name != "" {
			errorTemplate = name
		}
	}

	if options.Failed() || v == nil {
		message := "Nothing to preview"
		if options.Err != nil {
			message = options.Err.Error()
		}
		data["message"] = message
		out, err := r.templates.RenderTemplate(errorTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("html renderer: render error page: %w", err)
		}
		return []byte(out), nil
	}

	description, err := r.description(v.Description)
	if err != nil {
		return nil, fmt.Errorf("html renderer: description: %w", err)
	}

	data["icon"] = v.Icon
	data["resource_type"] = v.ResourceType
	data["description"] = description
	data["body"] = Markup(v.Nodes)
	data["warnings"] = warningData(options.Warnings)

	out, err := r.templates.RenderTemplate(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) description(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(descriptionPolicy().Sanitize(buf.String())), nil
}

func pageTitle(v *view.View, options render.RenderOptions) string {
	if title := strings.TrimSpace(options.Title); title != "" {
		return title
	}
	if v != nil && v.TemplateName != "" {
		return v.TemplateName
	}
	return "Preview"
}

func warningData(warnings []diagnostics.Warning) []map[string]any {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, map[string]any{
			"code":    string(w.Code),
			"message": w.Message,
			"field":   w.FieldID,
			"detail":  w.Detail,
		})
	}
	return out
}

var (
	descriptionOnce sync.Once
	descriptionPol  *bluemonday.Policy
)

func descriptionPolicy() *bluemonday.Policy {
	descriptionOnce.Do(func() {
		descriptionPol = bluemonday.UGCPolicy()
	})
	return descriptionPol
}
