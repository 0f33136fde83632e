package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fhirview/pkg/model"
)

const templateJSON = `{
  "id": "tpl-patient",
  "name": "Patient Summary",
  "resourceType": "Patient",
  "fields": [
    {"id": "title", "type": "label", "label": "Demographics", "order": 0, "fontSize": 18, "fontWeight": "bold", "color": "#333"},
    {"id": "gender", "type": "select", "label": "Gender", "order": 2, "fhirPath": "gender",
     "options": [{"value": "male", "label": "Male"}, {"value": "female", "label": "Female"}]},
    {"id": "cols", "type": "twoColumn", "order": 3, "leftWidth": "40%", "gap": 12,
     "leftColumn": [{"id": "city", "type": "text", "fhirPath": "address[0].city"}],
     "rightColumn": [{"id": "state", "type": "text", "fhirPath": "address[0].state"}]},
    {"id": "names", "type": "widget", "order": 4, "fhirPath": "name", "widgetTemplateId": "tpl-name",
     "widgetResourceType": "HumanName", "multiple": true},
    {"id": "mystery", "type": "bogus", "order": 5},
    {"id": "box", "type": "group", "label": "Box", "order": 6,
     "children": [{"id": "active", "type": "checkbox", "label": "Active", "fhirPath": "active", "hideIfEmpty": true}]}
  ]
}`

func TestFieldUnmarshalJSONBuildsVariants(t *testing.T) {
	t.Parallel()

	var tpl model.Template
	if err := json.Unmarshal([]byte(templateJSON), &tpl); err != nil {
		t.Fatalf("unmarshal template: %v", err)
	}
	if len(tpl.Fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(tpl.Fields))
	}

	label, ok := tpl.Fields[0].Variant.(model.LabelSpec)
	if !ok {
		t.Fatalf("expected LabelSpec, got %T", tpl.Fields[0].Variant)
	}
	if label.FontSize != "18" || !label.FontSize.IsNumeric() {
		t.Fatalf("expected numeric font size 18, got %q", label.FontSize)
	}
	if label.FontWeight != "bold" || label.Color != "#333" {
		t.Fatalf("unexpected label styling: %+v", label)
	}

	options := tpl.Fields[1].Options()
	if len(options) != 2 || options[1].Label != "Female" {
		t.Fatalf("expected select options, got %+v", options)
	}

	cols, ok := tpl.Fields[2].Variant.(model.TwoColumnSpec)
	if !ok {
		t.Fatalf("expected TwoColumnSpec, got %T", tpl.Fields[2].Variant)
	}
	if cols.LeftWidth != "40%" || cols.Gap != "12" {
		t.Fatalf("unexpected column sizing: %+v", cols)
	}
	if cols.LeftColumn[0].FHIRPath != "address[0].city" {
		t.Fatalf("expected nested left column field, got %+v", cols.LeftColumn)
	}

	widget, ok := tpl.Fields[3].Variant.(model.WidgetSpec)
	if !ok {
		t.Fatalf("expected WidgetSpec, got %T", tpl.Fields[3].Variant)
	}
	want := model.WidgetSpec{WidgetTemplateID: "tpl-name", WidgetResourceType: "HumanName", Multiple: true}
	if diff := cmp.Diff(want, widget); diff != "" {
		t.Fatalf("widget mismatch (-want +got):\n%s", diff)
	}

	unknown, ok := tpl.Fields[4].Variant.(model.UnknownSpec)
	if !ok || unknown.Type != "bogus" {
		t.Fatalf("expected UnknownSpec for bogus, got %#v", tpl.Fields[4].Variant)
	}
	if tpl.Fields[4].Type().Known() {
		t.Fatalf("expected bogus type to be unknown")
	}

	group := tpl.Fields[5].Variant.(model.GroupSpec)
	if len(group.Children) != 1 || !group.Children[0].HideIfEmpty {
		t.Fatalf("expected group child with hideIfEmpty, got %+v", group.Children)
	}
}

func TestFieldJSONRoundTripPreservesDocument(t *testing.T) {
	t.Parallel()

	var first model.Template
	if err := json.Unmarshal([]byte(templateJSON), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var second model.Template
	if err := json.Unmarshal(encoded, &second); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestFieldUnmarshalYAML(t *testing.T) {
	t.Parallel()

	doc := `
id: tpl-address
name: Address
resourceType: Address
fields:
  - id: line
    type: text
    label: Line
    fhirPath: line[0]
    order: 1
  - id: kind
    type: radio
    fhirPath: use
    order: 2
    options:
      - value: home
        label: Home
  - id: heading
    type: label
    label: Where
    fontSize: 14px
`
	var tpl model.Template
	if err := yaml.Unmarshal([]byte(doc), &tpl); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if got := tpl.Fields[0].Type(); got != model.FieldTypeText {
		t.Fatalf("expected text field, got %q", got)
	}
	if got := tpl.Fields[1].Options(); len(got) != 1 || got[0].Value != "home" {
		t.Fatalf("expected radio options, got %+v", got)
	}
	if spec := tpl.Fields[2].Variant.(model.LabelSpec); spec.FontSize != "14px" {
		t.Fatalf("expected 14px font size, got %q", spec.FontSize)
	}
}

func TestDimensionRejectsObjects(t *testing.T) {
	t.Parallel()

	var d model.Dimension
	if err := json.Unmarshal([]byte(`{"px": 4}`), &d); err == nil {
		t.Fatalf("expected error for object dimension")
	}
}

func TestWalkVisitsNestedFieldsInSourceOrder(t *testing.T) {
	t.Parallel()

	var tpl model.Template
	if err := json.Unmarshal([]byte(templateJSON), &tpl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var paths []string
	model.Walk(tpl.Fields, func(path string, field model.Field) bool {
		paths = append(paths, path+"="+field.ID)
		return true
	})

	want := []string{
		"fields[0]=title",
		"fields[1]=gender",
		"fields[2]=cols",
		"fields[2].leftColumn[0]=city",
		"fields[2].rightColumn[0]=state",
		"fields[3]=names",
		"fields[4]=mystery",
		"fields[5]=box",
		"fields[5].children[0]=active",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceTypeOf(t *testing.T) {
	t.Parallel()

	if got := model.ResourceTypeOf(map[string]any{"resourceType": " Patient "}); got != "Patient" {
		t.Fatalf("expected Patient, got %q", got)
	}
	if got := model.ResourceTypeOf([]any{}); got != "" {
		t.Fatalf("expected empty resource type for arrays, got %q", got)
	}
}
