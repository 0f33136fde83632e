package view

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-fhirview/pkg/alias"
	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/expr"
	"github.com/goliatone/go-fhirview/pkg/fhirpath"
	"github.com/goliatone/go-fhirview/pkg/format"
	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/store"
)

// DefaultMaxWidgetDepth bounds how many widgets may nest inside each other.
const DefaultMaxWidgetDepth = 8

// Option customises a Builder.
type Option func(*Builder)

// WithStore sets the store consulted for widget templates.
func WithStore(s store.Store) Option {
	return func(b *Builder) {
		b.store = s
	}
}

// WithFormatter overrides the display formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(b *Builder) {
		b.formatter = f
	}
}

// WithReporter routes rendering warnings to r.
func WithReporter(r diagnostics.Reporter) Option {
	return func(b *Builder) {
		b.reporter = r
	}
}

// WithItemLabeler overrides the generators used to label repeated widget
// items.
func WithItemLabeler(l *ItemLabeler) Option {
	return func(b *Builder) {
		b.labeler = l
	}
}

// WithMaxWidgetDepth caps widget nesting. Values below one keep the default.
func WithMaxWidgetDepth(depth int) Option {
	return func(b *Builder) {
		b.maxDepth = depth
	}
}

// Builder turns templates and data into node trees. A Builder holds no
// per-render state and is safe for concurrent use.
type Builder struct {
	store     store.Store
	formatter *format.Formatter
	reporter  diagnostics.Reporter
	labeler   *ItemLabeler
	maxDepth  int
}

// New constructs a Builder.
func New(options ...Option) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	b.applyDefaults()
	return b
}

func (b *Builder) applyDefaults() {
	if b.store == nil {
		b.store = store.NewRegistry()
	}
	if b.formatter == nil {
		b.formatter = format.New()
	}
	b.reporter = diagnostics.OrNop(b.reporter)
	if b.labeler == nil {
		b.labeler = defaultItemLabeler
	}
	if b.maxDepth < 1 {
		b.maxDepth = DefaultMaxWidgetDepth
	}
}

// scope tracks where in the tree a field is rendered.
type scope struct {
	template string
	prefix   string
	nested   bool
	depth    int
	stack    []string
}

func (s scope) child(prefix string) scope {
	s.prefix = prefix
	return s
}

func (s scope) onStack(id string) bool {
	return slices.Contains(s.stack, id)
}

// RenderTemplate renders every top-level field of tpl against data.
func (b *Builder) RenderTemplate(tpl model.Template, data any) *View {
	sc := scope{template: tpl.Name, prefix: "fields"}
	if id := strings.TrimSpace(tpl.ID); id != "" {
		sc.stack = []string{id}
	}

	resourceType := tpl.ResourceType
	if resourceType == "" {
		resourceType = model.ResourceTypeOf(data)
	}

	return &View{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		ResourceType: resourceType,
		Description:  tpl.Description,
		Icon:         IconFor(resourceType),
		Nodes:        b.renderList(tpl.Fields, data, sc),
	}
}

// RenderFields renders fields in order, dropping hidden ones. The result is
// never nil.
func (b *Builder) RenderFields(fields []model.Field, data any) []*Node {
	return b.renderList(fields, data, scope{prefix: "fields"})
}

// RenderField renders a single field. It returns nil exactly when the field's
// hide-if-empty gate suppresses it.
func (b *Builder) RenderField(field model.Field, data any) *Node {
	return b.render(field, data, scope{}, "field")
}

type indexedField struct {
	index int
	field model.Field
}

// sortFields orders fields by Order, keeping authoring order for ties.
func sortFields(fields []model.Field) []indexedField {
	sorted := make([]indexedField, len(fields))
	for i, f := range fields {
		sorted[i] = indexedField{index: i, field: f}
	}
	slices.SortStableFunc(sorted, func(a, b indexedField) int {
		return cmp.Compare(a.field.Order, b.field.Order)
	})
	return sorted
}

func (b *Builder) renderList(fields []model.Field, data any, sc scope) []*Node {
	nodes := make([]*Node, 0, len(fields))
	for _, entry := range sortFields(fields) {
		key := sc.prefix + "[" + strconv.Itoa(entry.index) + "]"
		if node := b.render(entry.field, data, sc, key); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (b *Builder) render(field model.Field, data any, sc scope, key string) *Node {
	switch spec := field.Variant.(type) {
	case model.LabelSpec:
		node := b.base(field, key, KindLabel)
		node.Value = field.Label
		node.Style = &LabelStyle{
			FontSize:   spec.FontSize.String(),
			FontWeight: spec.FontWeight.String(),
			Color:      spec.Color,
		}
		return node

	case model.GroupSpec:
		node := b.base(field, key, KindGroup)
		node.Children = b.renderList(spec.Children, data, sc.child(key+".children"))
		return node

	case model.TwoColumnSpec:
		node := b.base(field, key, KindTwoColumn)
		node.Left = b.renderList(spec.LeftColumn, data, sc.child(key+".leftColumn"))
		node.Right = b.renderList(spec.RightColumn, data, sc.child(key+".rightColumn"))
		node.LeftWidth = spec.LeftWidth.String()
		node.Gap = spec.Gap.String()
		return node

	case model.WidgetSpec:
		return b.renderWidget(field, spec, data, sc, key)

	case model.TextSpec, model.DateSpec, model.SelectSpec, model.RadioSpec, model.CheckboxSpec:
		return b.renderLeaf(field, data, sc, key)

	default:
		typeName := string(field.Type())
		if typeName == "" {
			typeName = "(none)"
		}
		b.warn(sc, field, diagnostics.Warning{
			Code:    diagnostics.CodeUnsupportedField,
			Message: "unsupported field type",
			Detail:  typeName,
		})
		node := b.base(field, key, KindUnsupported)
		node.Message = "Unsupported field type: " + typeName
		return node
	}
}

func (b *Builder) base(field model.Field, key string, kind Kind) *Node {
	return &Node{
		Key:       key,
		FieldID:   field.ID,
		Kind:      kind,
		Type:      field.Type(),
		Label:     format.LabelFor(field),
		HideLabel: field.HideLabel,
		Required:  field.Required,
	}
}

func (b *Builder) renderLeaf(field model.Field, data any, sc scope, key string) *Node {
	raw := b.acquire(field, data, sc)
	display := b.formatter.Format(field, raw, format.Context{Nested: sc.nested})
	if display.Hidden {
		return nil
	}

	node := b.base(field, key, KindValue)
	node.Value = display.Text
	node.Missing = display.Missing
	node.Checked = display.Checked
	return node
}

// acquire resolves the raw value for a field: the expression when data is
// present, else the path, else the empty string.
func (b *Builder) acquire(field model.Field, data any, sc scope) any {
	if strings.TrimSpace(field.Expression) != "" && data != nil {
		record, _ := data.(map[string]any)
		reporter := b.fieldReporter(sc, field)
		evaluator := expr.New(record, expr.WithAliasTable(alias.NewTable(alias.WithReporter(reporter))))
		value, err := evaluator.Eval(field.Expression)
		if err != nil {
			reporter.Warn(diagnostics.Warning{
				Code:    diagnostics.CodeExpressionError,
				Message: "expression could not be evaluated",
				Detail:  err.Error(),
			})
			return expr.FormatError(err)
		}
		return value
	}
	if path := strings.TrimSpace(field.FHIRPath); path != "" {
		return resolvePath(data, path)
	}
	return ""
}

func resolvePath(data any, path string) any {
	if alias.IsSpecialForm(path) {
		if value, ok := alias.ResolveSpecialForm(data, path); ok {
			return value
		}
		return nil
	}
	return fhirpath.Lookup(data, path)
}

func (b *Builder) renderWidget(field model.Field, spec model.WidgetSpec, data any, sc scope, key string) *Node {
	node := b.base(field, key, KindWidget)

	id := strings.TrimSpace(spec.WidgetTemplateID)
	if id == "" {
		b.warn(sc, field, diagnostics.Warning{
			Code:    diagnostics.CodeWidgetNoTemplate,
			Message: "widget has no template selected",
		})
		node.Kind = KindPlaceholder
		node.Message = "No template selected"
		return node
	}

	tpl, ok := b.store.Get(id)
	if !ok {
		b.warn(sc, field, diagnostics.Warning{
			Code:    diagnostics.CodeWidgetTemplateNotFound,
			Message: "widget template not found",
			Detail:  id,
		})
		node.Kind = KindError
		node.Message = "Template not found: " + id
		return node
	}

	if sc.onStack(id) || sc.depth >= b.maxDepth {
		message := fmt.Sprintf("Widget nesting exceeds %d levels: %s", b.maxDepth, id)
		if sc.onStack(id) {
			message = "Widget template includes itself: " + id
		}
		b.warn(sc, field, diagnostics.Warning{
			Code:    diagnostics.CodeWidgetRecursion,
			Message: "widget recursion stopped",
			Detail:  strings.Join(append(slices.Clone(sc.stack), id), " > "),
		})
		node.Kind = KindError
		node.Message = message
		return node
	}

	var nested any
	if path := strings.TrimSpace(field.FHIRPath); path != "" && data != nil {
		nested = resolvePath(data, path)
	}
	if nested == nil {
		nested = tpl.SampleData
	}
	if format.ShouldHide(field, nested) {
		return nil
	}

	resourceType := spec.WidgetResourceType
	if resourceType == "" {
		resourceType = tpl.ResourceType
	}
	node.ResourceType = resourceType
	node.TemplateName = tpl.Name
	node.Icon = IconFor(resourceType)

	inner := scope{
		template: tpl.Name,
		nested:   true,
		depth:    sc.depth + 1,
		stack:    append(slices.Clone(sc.stack), id),
	}

	items, isList := nested.([]any)
	if !spec.Multiple || !isList {
		node.Children = b.renderList(tpl.Fields, nested, inner.child(key+".fields"))
		return node
	}

	if len(items) == 0 {
		empty := &Node{Key: key + ".empty", Kind: KindEmpty}
		if resourceType != "" {
			empty.Message = "No " + resourceType + " entries"
		} else {
			empty.Message = "No entries"
		}
		node.Children = []*Node{empty}
		return node
	}

	node.Children = make([]*Node, 0, len(items))
	for i, item := range items {
		itemKey := key + ".items[" + strconv.Itoa(i) + "]"
		label, err := b.labeler.generate(resourceType, item, i)
		if err != nil {
			b.warn(sc, field, diagnostics.Warning{
				Code:    diagnostics.CodeItemLabel,
				Message: "item label generation failed",
				Detail:  err.Error(),
			})
		}
		node.Children = append(node.Children, &Node{
			Key:          itemKey,
			Kind:         KindItem,
			Label:        label,
			ResourceType: resourceType,
			Icon:         IconFor(resourceType),
			Children:     b.renderList(tpl.Fields, item, inner.child(itemKey+".fields")),
		})
	}
	return node
}

func (b *Builder) warn(sc scope, field model.Field, w diagnostics.Warning) {
	b.fieldReporter(sc, field).Warn(w)
}

// fieldReporter stamps the template and field onto warnings that lack them.
func (b *Builder) fieldReporter(sc scope, field model.Field) diagnostics.Reporter {
	return diagnostics.ReporterFunc(func(w diagnostics.Warning) {
		if w.Template == "" {
			w.Template = sc.template
		}
		if w.FieldID == "" {
			w.FieldID = field.ID
		}
		b.reporter.Warn(w)
	})
}
