package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/format"
	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/renderers/html"
	"github.com/goliatone/go-fhirview/pkg/renderers/jsonview"
	"github.com/goliatone/go-fhirview/pkg/renderers/text"
	"github.com/goliatone/go-fhirview/pkg/store"
	"github.com/goliatone/go-fhirview/pkg/theme"
	"github.com/goliatone/go-fhirview/pkg/view"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

const (
	defaultRendererName = html.Name
	// decodeCacheSize bounds the memoised (workspace, template) pairs.
	decodeCacheSize = 64
)

// Option customises the Previewer.
type Option func(*Previewer)

// WithStore adds an external template store consulted for widget ids the
// workspace itself does not define.
func WithStore(s store.Store) Option {
	return func(p *Previewer) {
		p.store = s
	}
}

// WithRegistry injects the painter registry.
func WithRegistry(registry *render.Registry) Option {
	return func(p *Previewer) {
		p.registry = registry
	}
}

// WithDefaultRenderer names the painter used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(p *Previewer) {
		p.defaultRenderer = name
	}
}

// WithThemeSelector overrides how theme names become renderer configuration.
func WithThemeSelector(selector gotheme.ThemeSelector) Option {
	return func(p *Previewer) {
		p.selector = selector
	}
}

// WithDefaultTheme sets the scheme used when a request omits one.
func WithDefaultTheme(name string) Option {
	return func(p *Previewer) {
		p.defaultTheme = name
	}
}

// WithReporter receives every warning in addition to the per-pass result.
func WithReporter(r diagnostics.Reporter) Option {
	return func(p *Previewer) {
		p.reporter = r
	}
}

// WithFormatter overrides the display formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(p *Previewer) {
		p.formatter = f
	}
}

// WithItemLabeler overrides repeated item labelling.
func WithItemLabeler(l *view.ItemLabeler) Option {
	return func(p *Previewer) {
		p.labeler = l
	}
}

// WithMaxWidgetDepth caps widget nesting.
func WithMaxWidgetDepth(depth int) Option {
	return func(p *Previewer) {
		p.maxDepth = depth
	}
}

// WithShowErrors controls whether failed passes paint an error panel when
// the request does not say.
func WithShowErrors(show bool) Option {
	return func(p *Previewer) {
		p.showErrors = show
	}
}

// Previewer runs render passes: decode the workspace, find the template,
// check it against the data, build the view, and paint it. Decoding is
// memoised per (workspace, template) pair; everything else is recomputed.
// A Previewer is safe for concurrent use.
type Previewer struct {
	store           store.Store
	registry        *render.Registry
	defaultRenderer string
	selector        gotheme.ThemeSelector
	defaultTheme    string
	reporter        diagnostics.Reporter
	formatter       *format.Formatter
	labeler         *view.ItemLabeler
	maxDepth        int
	showErrors      bool
	initialiseErr   error

	mu    sync.Mutex
	cache map[cacheKey]*resolved
}

type cacheKey struct {
	workspace string
	template  string
}

// resolved is the immutable outcome of decoding one workspace and looking up
// one template in it.
type resolved struct {
	template   model.Template
	templates  *store.Registry
	duplicates []string
	err        error
}

// New constructs a Previewer. Missing collaborators get built-in defaults:
// the html, text and json painters, the light scheme, and errors shown.
func New(options ...Option) *Previewer {
	p := &Previewer{
		defaultRenderer: defaultRendererName,
		defaultTheme:    theme.Default,
		showErrors:      true,
		cache:           make(map[cacheKey]*resolved),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	p.applyDefaults()
	return p
}

func (p *Previewer) applyDefaults() {
	if p.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			p.initialiseErr = fmt.Errorf("preview: default renderers: %w", err)
		}
		p.registry = registry
	}
	if p.defaultRenderer == "" {
		p.defaultRenderer = defaultRendererName
	}
	if p.selector == nil {
		p.selector = theme.NewSelector()
	}
	if p.defaultTheme == "" {
		p.defaultTheme = theme.Default
	}
	if p.formatter == nil {
		p.formatter = format.New()
	}
	p.reporter = diagnostics.OrNop(p.reporter)
}

// DefaultRegistry returns a registry holding the html, text and json
// painters.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return registry, err
	}
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(text.New())
	registry.MustRegister(jsonview.New())
	return registry, nil
}

// Registry exposes the painter registry.
func (p *Previewer) Registry() *render.Registry {
	return p.registry
}

// Request describes one render pass.
type Request struct {
	// Workspace is the base64 encoded workspace payload.
	Workspace string
	// Template selects a template by exact name.
	Template string
	// Data is the resource being previewed.
	Data any
	// Renderer names the painter; empty uses the default.
	Renderer string
	// Theme names the colour scheme; empty uses the default.
	Theme string
	// Title overrides the painted heading.
	Title string
	// ShowErrors overrides the previewer's setting for this pass.
	ShowErrors *bool
}

// Result is the outcome of Build. Err is set only for pass-level failures
// (decode, template lookup, cancellation); field-level problems surface as
// Warnings and diagnostic nodes.
type Result struct {
	Template   *model.Template
	View       *view.View
	Warnings   []diagnostics.Warning
	Compatible bool
	Err        error
}

// Output is a painted pass.
type Output struct {
	Body        []byte
	ContentType string
	Result      Result
}

// Build runs a pass up to the view tree. It never panics on bad input and
// never returns field-level failures as errors.
func (p *Previewer) Build(ctx context.Context, req Request) Result {
	if ctx == nil {
		return Result{Err: errors.New("preview: context is required")}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	entry := p.resolve(req.Workspace, req.Template)
	if entry.err != nil {
		return Result{Err: entry.err}
	}

	recorder := diagnostics.NewRecorder()
	reporter := diagnostics.Multi(recorder, p.reporter)

	tpl := entry.template
	for _, id := range entry.duplicates {
		reporter.Warn(diagnostics.Warning{
			Code:     diagnostics.CodeValidation,
			Message:  fmt.Sprintf("duplicate template id %q; the first definition is used", id),
			Template: tpl.Name,
		})
	}

	compatible := workspace.ValidateCompatibility(tpl, req.Data)
	if !compatible {
		reporter.Warn(diagnostics.Warning{
			Code:     diagnostics.CodeResourceTypeMismatch,
			Message:  fmt.Sprintf("template expects %s but data is %s", tpl.ResourceType, model.ResourceTypeOf(req.Data)),
			Template: tpl.Name,
		})
	}

	builder := view.New(
		view.WithStore(store.Chain(entry.templates, p.store)),
		view.WithFormatter(p.formatter),
		view.WithReporter(reporter),
		view.WithItemLabeler(p.labeler),
		view.WithMaxWidgetDepth(p.maxDepth),
	)
	v := builder.RenderTemplate(tpl, req.Data)

	return Result{
		Template:   &tpl,
		View:       v,
		Warnings:   recorder.Warnings(),
		Compatible: compatible,
	}
}

// Paint hands a built result to the requested painter.
func (p *Previewer) Paint(ctx context.Context, req Request, res Result) (Output, error) {
	if ctx == nil {
		return Output{}, errors.New("preview: context is required")
	}
	if err := p.initialiseErr; err != nil {
		return Output{}, err
	}

	renderer, err := p.rendererFor(req.Renderer)
	if err != nil {
		return Output{}, err
	}
	cfg, err := p.themeFor(req.Theme)
	if err != nil {
		return Output{}, err
	}

	showErrors := p.showErrors
	if req.ShowErrors != nil {
		showErrors = *req.ShowErrors
	}

	body, err := renderer.Render(ctx, res.View, render.RenderOptions{
		Title:      req.Title,
		Theme:      cfg,
		Err:        res.Err,
		ShowErrors: showErrors,
		Warnings:   res.Warnings,
	})
	if err != nil {
		return Output{}, fmt.Errorf("preview: render output: %w", err)
	}
	return Output{Body: body, ContentType: renderer.ContentType(), Result: res}, nil
}

// Render is Build followed by Paint.
func (p *Previewer) Render(ctx context.Context, req Request) (Output, error) {
	if ctx == nil {
		return Output{}, errors.New("preview: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	return p.Paint(ctx, req, p.Build(ctx, req))
}

// Generate returns the painted bytes of a pass. Decode and lookup failures
// are painted, not returned; errors here mean the pass could not be painted
// at all (unknown painter or theme, cancelled context, template failure).
func (p *Previewer) Generate(ctx context.Context, req Request) ([]byte, error) {
	out, err := p.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Templates lists the template names carried by a workspace payload.
func Templates(payload string) ([]string, error) {
	ws, err := workspace.Decode(payload)
	if err != nil {
		return nil, err
	}
	return ws.TemplateNames(), nil
}

func (p *Previewer) resolve(payload, name string) *resolved {
	key := cacheKey{workspace: payload, template: name}

	p.mu.Lock()
	entry, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return entry
	}

	entry = decode(payload, name)

	p.mu.Lock()
	if len(p.cache) >= decodeCacheSize {
		clear(p.cache)
	}
	p.cache[key] = entry
	p.mu.Unlock()
	return entry
}

func decode(payload, name string) *resolved {
	ws, err := workspace.Decode(payload)
	if err != nil {
		return &resolved{err: err}
	}
	tpl, err := workspace.Lookup(ws, name)
	if err != nil {
		return &resolved{err: err}
	}

	templates := store.NewRegistry()
	var duplicates []string
	for _, candidate := range ws.Templates {
		id := strings.TrimSpace(candidate.ID)
		if id == "" {
			continue
		}
		if templates.Has(id) {
			duplicates = append(duplicates, id)
			continue
		}
		if err := templates.Register(candidate); err != nil {
			return &resolved{err: fmt.Errorf("preview: register template %q: %w", id, err)}
		}
	}
	return &resolved{template: tpl, templates: templates, duplicates: duplicates}
}

func (p *Previewer) rendererFor(name string) (render.Renderer, error) {
	if p.registry == nil {
		return nil, errors.New("preview: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = p.defaultRenderer
	}
	if target != "" {
		renderer, err := p.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("preview: %w", err)
		}
	}

	names := p.registry.List()
	if len(names) == 0 {
		return nil, errors.New("preview: no renderers registered")
	}
	return p.registry.Get(names[0])
}

type configSource interface {
	Config(scheme string) (*gotheme.RendererConfig, error)
}

func (p *Previewer) themeFor(name string) (*gotheme.RendererConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = p.defaultTheme
	}
	if source, ok := p.selector.(configSource); ok {
		cfg, err := source.Config(name)
		if err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		return cfg, nil
	}
	selection, err := p.selector.Select(name, "")
	if err != nil {
		return nil, fmt.Errorf("preview: select theme %q: %w", name, err)
	}
	return theme.RendererConfig(selection), nil
}
