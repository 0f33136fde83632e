package model

import (
	"strconv"
	"strings"
)

// FieldType identifies a field variant.
type FieldType string

const (
	FieldTypeLabel     FieldType = "label"
	FieldTypeText      FieldType = "text"
	FieldTypeDate      FieldType = "date"
	FieldTypeSelect    FieldType = "select"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeGroup     FieldType = "group"
	FieldTypeTwoColumn FieldType = "twoColumn"
	FieldTypeWidget    FieldType = "widget"
)

// FieldTypes returns the closed set of supported field types in declaration
// order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeLabel,
		FieldTypeText,
		FieldTypeDate,
		FieldTypeSelect,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeGroup,
		FieldTypeTwoColumn,
		FieldTypeWidget,
	}
}

// Known reports whether t belongs to the supported set.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// Resource is a semi-structured FHIR-like record. The engine only reads from
// it.
type Resource = map[string]any

// ResourceTypeOf returns the `resourceType` attribute of data when data is an
// object carrying a string value for it.
func ResourceTypeOf(data any) string {
	record, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	value, _ := record["resourceType"].(string)
	return strings.TrimSpace(value)
}

// Workspace groups the templates produced by the authoring tool.
type Workspace struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Templates []Template `json:"templates" yaml:"templates"`
}

// TemplateNames lists template names in workspace order.
func (w Workspace) TemplateNames() []string {
	names := make([]string, 0, len(w.Templates))
	for _, tpl := range w.Templates {
		names = append(names, tpl.Name)
	}
	return names
}

// Template describes how to preview one resource type.
type Template struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	ResourceType string  `json:"resourceType" yaml:"resourceType"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields       []Field `json:"fields" yaml:"fields"`
	// SampleData backs widget rendering when the outer resource does not
	// provide nested data. It may be an object or an array of objects.
	SampleData any `json:"sampleData,omitempty" yaml:"sampleData,omitempty"`
}

// Option is a value/label pair used by select and radio fields.
type Option struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field carries the attributes shared by every variant. The type-specific
// payload lives in Variant.
type Field struct {
	ID          string
	Label       string
	Order       float64
	FHIRPath    string
	Expression  string
	HideIfEmpty bool
	HideLabel   bool
	Required    bool
	Variant     Variant
}

// Type reports the field's type tag. Unknown variants report the raw tag.
func (f Field) Type() FieldType {
	if f.Variant == nil {
		return ""
	}
	return f.Variant.FieldType()
}

// Variant is the sealed set of field payloads. Switches over Variant should
// list every implementation plus a default branch for UnknownSpec.
type Variant interface {
	FieldType() FieldType
	isVariant()
}

// LabelSpec renders static text.
type LabelSpec struct {
	FontSize   Dimension
	FontWeight Dimension
	Color      string
}

// TextSpec renders a resolved value as text.
type TextSpec struct{}

// DateSpec renders a resolved value as a long-form date.
type DateSpec struct{}

// SelectSpec maps a resolved value onto an option label.
type SelectSpec struct {
	Options []Option
}

// RadioSpec maps a resolved value onto an option label.
type RadioSpec struct {
	Options []Option
}

// CheckboxSpec renders a resolved value as a boolean pair.
type CheckboxSpec struct{}

// GroupSpec nests child fields under a heading.
type GroupSpec struct {
	Children []Field
}

// TwoColumnSpec lays out two independent field sequences side by side.
type TwoColumnSpec struct {
	LeftColumn  []Field
	RightColumn []Field
	LeftWidth   Dimension
	Gap         Dimension
}

// WidgetSpec embeds another template, referenced by id.
type WidgetSpec struct {
	WidgetTemplateID   string
	WidgetResourceType string
	Multiple           bool
}

// UnknownSpec preserves a type tag outside the supported set.
type UnknownSpec struct {
	Type string
}

func (LabelSpec) FieldType() FieldType     { return FieldTypeLabel }
func (TextSpec) FieldType() FieldType      { return FieldTypeText }
func (DateSpec) FieldType() FieldType      { return FieldTypeDate }
func (SelectSpec) FieldType() FieldType    { return FieldTypeSelect }
func (RadioSpec) FieldType() FieldType     { return FieldTypeRadio }
func (CheckboxSpec) FieldType() FieldType  { return FieldTypeCheckbox }
func (GroupSpec) FieldType() FieldType     { return FieldTypeGroup }
func (TwoColumnSpec) FieldType() FieldType { return FieldTypeTwoColumn }
func (WidgetSpec) FieldType() FieldType    { return FieldTypeWidget }
func (u UnknownSpec) FieldType() FieldType { return FieldType(u.Type) }

func (LabelSpec) isVariant()     {}
func (TextSpec) isVariant()      {}
func (DateSpec) isVariant()      {}
func (SelectSpec) isVariant()    {}
func (RadioSpec) isVariant()     {}
func (CheckboxSpec) isVariant()  {}
func (GroupSpec) isVariant()     {}
func (TwoColumnSpec) isVariant() {}
func (WidgetSpec) isVariant()    {}
func (UnknownSpec) isVariant()   {}

// VariantFor returns the zero payload for a type tag. Tags outside the
// supported set yield UnknownSpec.
func VariantFor(t FieldType) Variant {
	switch t {
	case FieldTypeLabel:
		return LabelSpec{}
	case FieldTypeText:
		return TextSpec{}
	case FieldTypeDate:
		return DateSpec{}
	case FieldTypeSelect:
		return SelectSpec{}
	case FieldTypeRadio:
		return RadioSpec{}
	case FieldTypeCheckbox:
		return CheckboxSpec{}
	case FieldTypeGroup:
		return GroupSpec{}
	case FieldTypeTwoColumn:
		return TwoColumnSpec{}
	case FieldTypeWidget:
		return WidgetSpec{}
	default:
		return UnknownSpec{Type: string(t)}
	}
}

// Options returns the options carried by select and radio variants.
func (f Field) Options() []Option {
	switch spec := f.Variant.(type) {
	case SelectSpec:
		return spec.Options
	case RadioSpec:
		return spec.Options
	default:
		return nil
	}
}

// Walk visits every field and its nested fields in depth-first source
// order. Widget templates are not followed. Returning false from visit stops descent into
// the current field's children.
func Walk(fields []Field, visit func(path string, field Field) bool) {
	walk(fields, "fields", visit)
}

func walk(fields []Field, prefix string, visit func(string, Field) bool) {
	for i, field := range fields {
		path := prefix + "[" + strconv.Itoa(i) + "]"
		if !visit(path, field) {
			continue
		}
		switch spec := field.Variant.(type) {
		case GroupSpec:
			walk(spec.Children, path+".children", visit)
		case TwoColumnSpec:
			walk(spec.LeftColumn, path+".leftColumn", visit)
			walk(spec.RightColumn, path+".rightColumn", visit)
		}
	}
}
