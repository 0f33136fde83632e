package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is a presentation value that authors write either as a number
// (`16`) or as a CSS string (`"16px"`, `"bold"`). Numbers keep their decimal
// spelling.
type Dimension string

// String returns the raw spelling.
func (d Dimension) String() string { return string(d) }

// IsNumeric reports whether the dimension was written as a bare number.
func (d Dimension) IsNumeric() bool {
	if d == "" {
		return false
	}
	_, err := strconv.ParseFloat(string(d), 64)
	return err == nil
}

// UnmarshalJSON accepts strings, numbers, and null.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = Dimension(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("model: dimension must be a string or number: %w", err)
	}
	*d = Dimension(n.String())
	return nil
}

// MarshalJSON writes numeric dimensions back as numbers.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.IsNumeric() {
		return []byte(d), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalYAML accepts any scalar.
func (d *Dimension) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("model: dimension must be a scalar (line %d)", value.Line)
	}
	if value.Tag == "!!null" {
		*d = ""
		return nil
	}
	*d = Dimension(strings.TrimSpace(value.Value))
	return nil
}

// fieldWire is the flat document shape shared by every variant.
type fieldWire struct {
	ID          string    `json:"id" yaml:"id"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Order       float64   `json:"order" yaml:"order"`
	FHIRPath    string    `json:"fhirPath,omitempty" yaml:"fhirPath,omitempty"`
	Expression  string    `json:"expression,omitempty" yaml:"expression,omitempty"`
	HideIfEmpty bool      `json:"hideIfEmpty,omitempty" yaml:"hideIfEmpty,omitempty"`
	HideLabel   bool      `json:"hideLabel,omitempty" yaml:"hideLabel,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`

	FontSize   Dimension `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight Dimension `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	Color      string    `json:"color,omitempty" yaml:"color,omitempty"`

	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	Children []Field `json:"children,omitempty" yaml:"children,omitempty"`

	LeftColumn  []Field   `json:"leftColumn,omitempty" yaml:"leftColumn,omitempty"`
	RightColumn []Field   `json:"rightColumn,omitempty" yaml:"rightColumn,omitempty"`
	LeftWidth   Dimension `json:"leftWidth,omitempty" yaml:"leftWidth,omitempty"`
	Gap         Dimension `json:"gap,omitempty" yaml:"gap,omitempty"`

	WidgetTemplateID   string `json:"widgetTemplateId,omitempty" yaml:"widgetTemplateId,omitempty"`
	WidgetResourceType string `json:"widgetResourceType,omitempty" yaml:"widgetResourceType,omitempty"`
	Multiple           bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

func (w fieldWire) field() Field {
	field := Field{
		ID:          w.ID,
		Label:       w.Label,
		Order:       w.Order,
		FHIRPath:    strings.TrimSpace(w.FHIRPath),
		Expression:  w.Expression,
		HideIfEmpty: w.HideIfEmpty,
		HideLabel:   w.HideLabel,
		Required:    w.Required,
	}

	switch w.Type {
	case FieldTypeLabel:
		field.Variant = LabelSpec{FontSize: w.FontSize, FontWeight: w.FontWeight, Color: w.Color}
	case FieldTypeSelect:
		field.Variant = SelectSpec{Options: w.Options}
	case FieldTypeRadio:
		field.Variant = RadioSpec{Options: w.Options}
	case FieldTypeGroup:
		field.Variant = GroupSpec{Children: w.Children}
	case FieldTypeTwoColumn:
		field.Variant = TwoColumnSpec{
			LeftColumn:  w.LeftColumn,
			RightColumn: w.RightColumn,
			LeftWidth:   w.LeftWidth,
			Gap:         w.Gap,
		}
	case FieldTypeWidget:
		field.Variant = WidgetSpec{
			WidgetTemplateID:   strings.TrimSpace(w.WidgetTemplateID),
			WidgetResourceType: strings.TrimSpace(w.WidgetResourceType),
			Multiple:           w.Multiple,
		}
	default:
		field.Variant = VariantFor(w.Type)
	}
	return field
}

func wireFromField(f Field) fieldWire {
	w := fieldWire{
		ID:          f.ID,
		Type:        f.Type(),
		Label:       f.Label,
		Order:       f.Order,
		FHIRPath:    f.FHIRPath,
		Expression:  f.Expression,
		HideIfEmpty: f.HideIfEmpty,
		HideLabel:   f.HideLabel,
		Required:    f.Required,
	}

	switch spec := f.Variant.(type) {
	case LabelSpec:
		w.FontSize, w.FontWeight, w.Color = spec.FontSize, spec.FontWeight, spec.Color
	case SelectSpec:
		w.Options = spec.Options
	case RadioSpec:
		w.Options = spec.Options
	case GroupSpec:
		w.Children = spec.Children
	case TwoColumnSpec:
		w.LeftColumn, w.RightColumn = spec.LeftColumn, spec.RightColumn
		w.LeftWidth, w.Gap = spec.LeftWidth, spec.Gap
	case WidgetSpec:
		w.WidgetTemplateID = spec.WidgetTemplateID
		w.WidgetResourceType = spec.WidgetResourceType
		w.Multiple = spec.Multiple
	}
	return w
}

// UnmarshalJSON decodes the flat document form into the variant union.
func (f *Field) UnmarshalJSON(data []byte) error {
	var wire fieldWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*f = wire.field()
	return nil
}

// MarshalJSON writes the flat document form.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireFromField(f))
}

// UnmarshalYAML decodes the flat document form into the variant union.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	var wire fieldWire
	if err := value.Decode(&wire); err != nil {
		return err
	}
	*f = wire.field()
	return nil
}

// MarshalYAML writes the flat document form.
func (f Field) MarshalYAML() (any, error) {
	return wireFromField(f), nil
}
