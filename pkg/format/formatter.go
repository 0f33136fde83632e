// Package format turns resolved resource values into display text for one
// field: the hide-if-empty gate, the N/A fallback, option label lookup,
// boolean pairs, and long-form dates with an age suffix for birth dates.
//
// The formatter never sees the presentation layer; it returns a Display the
// view builder attaches to nodes.
package format

import (
	"math"
	"reflect"
	"time"

	"github.com/goliatone/go-fhirview/pkg/fhirpath"
	"github.com/goliatone/go-fhirview/pkg/model"
)

// MissingText is shown for values that are absent or empty.
const MissingText = "N/A"

// Display is the formatted outcome for one field.
type Display struct {
	Text string
	// Hidden is set when the hide-if-empty gate suppresses the field.
	Hidden bool
	// Missing is set when Text is the N/A fallback.
	Missing bool
	// Checked carries the coerced boolean for checkbox fields.
	Checked *bool
}

// Context describes where the field is being rendered.
type Context struct {
	// Nested is true for fields rendered inside a widget's template.
	Nested bool
}

// Formatter formats values. It is safe for concurrent use.
type Formatter struct {
	now      func() time.Time
	location *time.Location
	missing  string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the clock used for age computation.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		f.now = now
	}
}

// WithLocation sets the location used to interpret date-only values and to
// display timestamps.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		f.location = loc
	}
}

// WithMissingText overrides the N/A fallback text.
func WithMissingText(text string) Option {
	return func(f *Formatter) {
		f.missing = text
	}
}

// New builds a Formatter.
func New(options ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	f.applyDefaults()
	return f
}

func (f *Formatter) applyDefaults() {
	if f.now == nil {
		f.now = time.Now
	}
	if f.location == nil {
		f.location = time.Local
	}
	if f.missing == "" {
		f.missing = MissingText
	}
}

// Format formats raw for field. Label fields pass their label through
// without looking at raw.
func (f *Formatter) Format(field model.Field, raw any, ctx Context) Display {
	if _, ok := field.Variant.(model.LabelSpec); ok {
		return Display{Text: field.Label}
	}
	if ShouldHide(field, raw) {
		return Display{Hidden: true}
	}

	switch spec := field.Variant.(type) {
	case model.DateSpec:
		return f.Date(field.Label, raw)
	case model.SelectSpec:
		return f.OptionLabel(spec.Options, raw)
	case model.RadioSpec:
		return f.OptionLabel(spec.Options, raw)
	case model.CheckboxSpec:
		return f.Checkbox(raw, ctx)
	default:
		return f.Value(raw)
	}
}

// Value formats raw for a plain text display.
func (f *Formatter) Value(raw any) Display {
	if isFalsy(raw) {
		return Display{Text: f.missing, Missing: true}
	}
	return Display{Text: Text(raw)}
}

// OptionLabel maps raw onto the label of the matching option, falling back
// to the value itself and then to N/A.
func (f *Formatter) OptionLabel(options []model.Option, raw any) Display {
	if !isFalsy(raw) {
		want := fhirpath.String(raw)
		for _, opt := range options {
			if fhirpath.String(opt.Value) == want {
				return Display{Text: opt.Label}
			}
		}
	}
	return f.Value(raw)
}

// Checkbox renders raw as Active/Inactive, or Yes/No inside widgets.
func (f *Formatter) Checkbox(raw any, ctx Context) Display {
	checked := Truthy(raw)
	text := "Inactive"
	switch {
	case ctx.Nested && checked:
		text = "Yes"
	case ctx.Nested:
		text = "No"
	case checked:
		text = "Active"
	}
	return Display{Text: text, Checked: &checked}
}

// ShouldHide reports whether field hides itself for raw: only fields with
// hideIfEmpty set hide, and only for nil, empty strings, empty arrays, and
// empty objects.
func ShouldHide(field model.Field, raw any) bool {
	return field.HideIfEmpty && IsEmpty(raw)
}

// IsEmpty reports nil, "", and zero-length arrays or objects.
func IsEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Truthy applies loose boolean coercion: false, 0, NaN, "", and nil are
// false; everything else, including empty collections, is true.
func Truthy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case int64:
		return v != 0
	}
	return true
}

// isFalsy is the N/A test: values that are falsy but not the boolean false or
// the number zero.
func isFalsy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return math.IsNaN(v)
	}
	return false
}

// displayKeys are the sub-properties preferred when an object is displayed.
var displayKeys = []string{"display", "text", "value"}

// Text converts raw into display text. Objects carrying display, text, or
// value show that sub-value; other objects and arrays are shown as JSON.
func Text(raw any) string {
	switch v := raw.(type) {
	case map[string]any:
		for _, key := range displayKeys {
			if sub, ok := v[key]; ok && !isFalsy(sub) {
				return Text(sub)
			}
		}
		return fhirpath.JSON(v)
	case []any:
		return fhirpath.JSON(v)
	}
	return fhirpath.String(raw)
}
