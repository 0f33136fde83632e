package view_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/format"
	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/store"
	"github.com/goliatone/go-fhirview/pkg/view"
)

func samplePatient() map[string]any {
	return map[string]any{
		"resourceType": "Patient",
		"id":           "p-1",
		"active":       true,
		"gender":       "female",
		"birthDate":    "1985-03-15",
		"name": []any{
			map[string]any{"use": "official", "given": []any{"Jane", "Q"}, "family": "Doe"},
			map[string]any{"use": "nickname"},
		},
		"telecom": []any{
			map[string]any{"system": "phone", "value": "555-0100"},
			map[string]any{"system": "email", "value": "jane@example.com"},
		},
		"address": []any{},
	}
}

func nameCard() model.Template {
	return model.Template{
		ID:           "name-card",
		Name:         "Name Card",
		ResourceType: "HumanName",
		Fields: []model.Field{
			{ID: "family", Label: "Family", FHIRPath: "family", Variant: model.TextSpec{}},
		},
		SampleData: map[string]any{"family": "Sample"},
	}
}

func newBuilder(t *testing.T, templates ...model.Template) (*view.Builder, *diagnostics.Recorder) {
	t.Helper()
	registry := store.NewRegistry()
	for _, tpl := range templates {
		registry.MustRegister(tpl)
	}
	recorder := diagnostics.NewRecorder()
	formatter := format.New(
		format.WithLocation(time.UTC),
		format.WithClock(func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return view.New(view.WithStore(registry), view.WithReporter(recorder), view.WithFormatter(formatter)), recorder
}

func TestRenderFieldExpression(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t)
	node := b.RenderField(model.Field{
		ID:         "name",
		Label:      "Name",
		Expression: "firstName + ' ' + lastName",
		Variant:    model.TextSpec{},
	}, samplePatient())

	if node == nil || node.Value != "Jane Doe" {
		t.Fatalf("expected Jane Doe, got %+v", node)
	}
	if len(recorder.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %+v", recorder.Warnings())
	}
}

func TestRenderFieldExpressionErrorIsVisible(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t)
	node := b.RenderField(model.Field{ID: "bad", Expression: "firstName +", Variant: model.TextSpec{}}, samplePatient())
	if node == nil || !strings.HasPrefix(node.Value, "[Error: ") {
		t.Fatalf("expected error text, got %+v", node)
	}

	warnings := recorder.Warnings()
	if len(warnings) != 1 || warnings[0].Code != diagnostics.CodeExpressionError || warnings[0].FieldID != "bad" {
		t.Fatalf("expected one expression warning for field bad, got %+v", warnings)
	}
}

func TestRenderFieldPathAndSpecialForm(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	data := samplePatient()

	if node := b.RenderField(model.Field{FHIRPath: "name[0].family", Variant: model.TextSpec{}}, data); node.Value != "Doe" {
		t.Fatalf("expected Doe, got %q", node.Value)
	}
	phone := b.RenderField(model.Field{FHIRPath: "telecom.find(t => t.system === 'phone').value", Variant: model.TextSpec{}}, data)
	if phone.Value != "555-0100" || phone.Label != "Phone" {
		t.Fatalf("expected phone value with derived label, got %+v", phone)
	}
	if node := b.RenderField(model.Field{FHIRPath: "name[9].family", Variant: model.TextSpec{}}, data); node.Value != "N/A" || !node.Missing {
		t.Fatalf("expected N/A for missing path, got %+v", node)
	}
	if node := b.RenderField(model.Field{Variant: model.TextSpec{}}, data); node.Value != "N/A" {
		t.Fatalf("expected N/A with no path or expression, got %q", node.Value)
	}
}

func TestRenderFieldHideIfEmpty(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	field := model.Field{FHIRPath: "address", HideIfEmpty: true, Variant: model.TextSpec{}}
	if node := b.RenderField(field, samplePatient()); node != nil {
		t.Fatalf("expected hidden field, got %+v", node)
	}
	field.HideIfEmpty = false
	if node := b.RenderField(field, samplePatient()); node == nil {
		t.Fatalf("expected visible field without hideIfEmpty")
	}
}

func TestEveryKnownTypeRendersWithoutDiagnostics(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t, nameCard())
	options := []model.Option{{Value: "female", Label: "Female"}}

	for _, fieldType := range model.FieldTypes() {
		field := model.Field{ID: string(fieldType), Label: "Field", FHIRPath: "gender", Variant: model.VariantFor(fieldType)}
		switch fieldType {
		case model.FieldTypeSelect:
			field.Variant = model.SelectSpec{Options: options}
		case model.FieldTypeRadio:
			field.Variant = model.RadioSpec{Options: options}
		case model.FieldTypeWidget:
			field.FHIRPath = "name[0]"
			field.Variant = model.WidgetSpec{WidgetTemplateID: "name-card"}
		}

		node := b.RenderField(field, samplePatient())
		if node == nil {
			t.Fatalf("%s: expected a node", fieldType)
		}
		switch node.Kind {
		case view.KindUnsupported, view.KindError, view.KindPlaceholder:
			t.Fatalf("%s: expected a regular node, got %+v", fieldType, node)
		}
		if node.Type != fieldType {
			t.Fatalf("%s: expected node type to match, got %q", fieldType, node.Type)
		}
	}
	if warnings := recorder.Warnings(); len(warnings) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", warnings)
	}
}

func TestUnknownTypeFailsLoud(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t)
	node := b.RenderField(model.Field{ID: "x", Variant: model.UnknownSpec{Type: "bogus"}}, samplePatient())
	if node.Kind != view.KindUnsupported || node.Message != "Unsupported field type: bogus" {
		t.Fatalf("expected unsupported node, got %+v", node)
	}
	if diff := cmp.Diff([]diagnostics.Code{diagnostics.CodeUnsupportedField}, recorder.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFieldsStableOrder(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	fields := []model.Field{
		{ID: "c", Order: 2, Variant: model.TextSpec{}},
		{ID: "a", Order: 1, Variant: model.TextSpec{}},
		{ID: "b", Order: 1, Variant: model.TextSpec{}},
		{ID: "hidden", Order: 0, HideIfEmpty: true, Variant: model.TextSpec{}},
	}

	nodes := b.RenderFields(fields, samplePatient())
	var got []string
	for _, n := range nodes {
		got = append(got, n.FieldID+"@"+n.Key)
	}
	want := []string{"a@fields[1]", "b@fields[2]", "c@fields[0]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if fields[0].ID != "c" {
		t.Fatalf("expected input slice to stay untouched")
	}
}

func TestGroupAlwaysRenders(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	group := model.Field{ID: "g", Label: "Contact", HideIfEmpty: true, Variant: model.GroupSpec{Children: []model.Field{
		{ID: "fax", FHIRPath: "fax", HideIfEmpty: true, Variant: model.TextSpec{}},
	}}}

	node := b.RenderField(group, samplePatient())
	if node == nil || node.Kind != view.KindGroup {
		t.Fatalf("expected group node, got %+v", node)
	}
	if node.Children == nil || len(node.Children) != 0 {
		t.Fatalf("expected empty non-nil body, got %#v", node.Children)
	}
}

func TestTwoColumnRendersBothColumns(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	field := model.Field{ID: "cols", Variant: model.TwoColumnSpec{
		LeftColumn: []model.Field{
			{ID: "l2", Order: 2, FHIRPath: "gender", Variant: model.TextSpec{}},
			{ID: "l1", Order: 1, FHIRPath: "id", Variant: model.TextSpec{}},
		},
		LeftWidth: "40%",
		Gap:       "12",
	}}

	node := b.RenderField(field, samplePatient())
	if len(node.Left) != 2 || node.Left[0].FieldID != "l1" || node.Left[1].Value != "female" {
		t.Fatalf("unexpected left column: %+v", node.Left)
	}
	if node.Right == nil || len(node.Right) != 0 {
		t.Fatalf("expected empty right column, got %#v", node.Right)
	}
	if node.LeftWidth != "40%" || node.Gap != "12" {
		t.Fatalf("expected layout hints, got %q/%q", node.LeftWidth, node.Gap)
	}
	if node.Left[0].Key != "field.leftColumn[1]" {
		t.Fatalf("expected column key, got %q", node.Left[0].Key)
	}
}

func TestLabelNodeCarriesStyle(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	node := b.RenderField(model.Field{Label: "Demographics", Variant: model.LabelSpec{FontSize: "18", FontWeight: "bold", Color: "#333"}}, nil)
	want := &view.LabelStyle{FontSize: "18", FontWeight: "bold", Color: "#333"}
	if node.Kind != view.KindLabel || node.Value != "Demographics" {
		t.Fatalf("expected label node, got %+v", node)
	}
	if diff := cmp.Diff(want, node.Style); diff != "" {
		t.Fatalf("style mismatch (-want +got):\n%s", diff)
	}
}

func TestWidgetFallbacks(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t, nameCard())
	data := samplePatient()

	placeholder := b.RenderField(model.Field{ID: "w1", Variant: model.WidgetSpec{}}, data)
	if placeholder.Kind != view.KindPlaceholder || placeholder.Message != "No template selected" {
		t.Fatalf("expected placeholder, got %+v", placeholder)
	}

	missing := b.RenderField(model.Field{ID: "w2", Variant: model.WidgetSpec{WidgetTemplateID: "gone"}}, data)
	if missing.Kind != view.KindError || missing.Message != "Template not found: gone" {
		t.Fatalf("expected not-found error, got %+v", missing)
	}

	resolved := b.RenderField(model.Field{ID: "w3", FHIRPath: "name[0]", Variant: model.WidgetSpec{WidgetTemplateID: "name-card"}}, data)
	if resolved.Kind != view.KindWidget || resolved.Children[0].Value != "Doe" {
		t.Fatalf("expected nested family name, got %+v", resolved)
	}
	if resolved.Icon != view.IconName || resolved.TemplateName != "Name Card" {
		t.Fatalf("expected name icon and template name, got %+v", resolved)
	}

	sample := b.RenderField(model.Field{ID: "w4", FHIRPath: "name[5]", Variant: model.WidgetSpec{WidgetTemplateID: "name-card"}}, data)
	if sample.Children[0].Value != "Sample" {
		t.Fatalf("expected sample data fallback, got %+v", sample.Children[0])
	}

	want := []diagnostics.Code{diagnostics.CodeWidgetNoTemplate, diagnostics.CodeWidgetTemplateNotFound}
	if diff := cmp.Diff(want, recorder.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestWidgetMultipleItems(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nameCard())
	field := model.Field{ID: "names", FHIRPath: "name", Variant: model.WidgetSpec{WidgetTemplateID: "name-card", Multiple: true}}

	node := b.RenderField(field, samplePatient())
	if len(node.Children) != 2 {
		t.Fatalf("expected two items, got %d", len(node.Children))
	}
	first, second := node.Children[0], node.Children[1]
	if first.Kind != view.KindItem || first.Label != "Jane Doe" || first.Children[0].Value != "Doe" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if second.Label != "Nickname Name" || second.Children[0].Value != "N/A" {
		t.Fatalf("unexpected second item: %+v", second)
	}
	if first.Children[0].Key != "field.items[0].fields[0]" {
		t.Fatalf("expected item-scoped key, got %q", first.Children[0].Key)
	}

	empty := b.RenderField(model.Field{FHIRPath: "address", Variant: model.WidgetSpec{
		WidgetTemplateID: "name-card", WidgetResourceType: "Address", Multiple: true,
	}}, samplePatient())
	if len(empty.Children) != 1 || empty.Children[0].Kind != view.KindEmpty || empty.Children[0].Message != "No Address entries" {
		t.Fatalf("expected empty state, got %+v", empty.Children)
	}
}

func TestWidgetNestedCheckboxUsesYesNo(t *testing.T) {
	t.Parallel()

	flags := model.Template{ID: "flags", Name: "Flags", Fields: []model.Field{
		{ID: "used", FHIRPath: "use", Variant: model.CheckboxSpec{}},
	}}
	b, _ := newBuilder(t, flags)

	node := b.RenderField(model.Field{FHIRPath: "name[0]", Variant: model.WidgetSpec{WidgetTemplateID: "flags"}}, samplePatient())
	if got := node.Children[0].Value; got != "Yes" {
		t.Fatalf("expected Yes inside widget, got %q", got)
	}
	top := b.RenderField(model.Field{FHIRPath: "active", Variant: model.CheckboxSpec{}}, samplePatient())
	if top.Value != "Active" {
		t.Fatalf("expected Active at top level, got %q", top.Value)
	}
}

func TestWidgetRecursionStops(t *testing.T) {
	t.Parallel()

	loop := model.Template{ID: "loop", Name: "Loop", Fields: []model.Field{
		{ID: "self", Variant: model.WidgetSpec{WidgetTemplateID: "loop"}},
	}}
	b, recorder := newBuilder(t, loop)

	v := b.RenderTemplate(loop, samplePatient())
	node := v.Find("self")
	if node == nil || node.Kind != view.KindError || !strings.Contains(node.Message, "includes itself") {
		t.Fatalf("expected recursion error, got %+v", node)
	}
	if diff := cmp.Diff([]diagnostics.Code{diagnostics.CodeWidgetRecursion}, recorder.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestWidgetDepthLimit(t *testing.T) {
	t.Parallel()

	registry := store.NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		next := map[string]string{"a": "b", "b": "c", "c": "d"}[id]
		registry.MustRegister(model.Template{ID: id, Name: id, Fields: []model.Field{
			{ID: "to-" + next, Variant: model.WidgetSpec{WidgetTemplateID: next}},
		}})
	}
	registry.MustRegister(model.Template{ID: "d", Name: "d"})

	recorder := diagnostics.NewRecorder()
	b := view.New(view.WithStore(registry), view.WithReporter(recorder), view.WithMaxWidgetDepth(2))
	v := b.RenderFields([]model.Field{{ID: "root", Variant: model.WidgetSpec{WidgetTemplateID: "a"}}}, nil)

	var kinds []view.Kind
	view.Walk(v, func(n *view.Node) { kinds = append(kinds, n.Kind) })
	want := []view.Kind{view.KindWidget, view.KindWidget, view.KindError}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]diagnostics.Code{diagnostics.CodeWidgetRecursion}, recorder.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTemplateView(t *testing.T) {
	t.Parallel()

	b, recorder := newBuilder(t)
	tpl := model.Template{ID: "t", Name: "Summary", ResourceType: "Patient", Description: "Basics", Fields: []model.Field{
		{ID: "dob", Label: "Date of Birth", FHIRPath: "birthDate", Variant: model.DateSpec{}},
		{ID: "alias", Expression: "nickname", Variant: model.TextSpec{}},
	}}

	v := b.RenderTemplate(tpl, samplePatient())
	if v.Icon != view.IconPerson || v.ResourceType != "Patient" || v.TemplateName != "Summary" {
		t.Fatalf("unexpected view header: %+v", v)
	}
	if got := v.Find("dob").Value; got != "March 15, 1985 (39 years)" {
		t.Fatalf("expected formatted birth date, got %q", got)
	}

	warnings := recorder.Warnings()
	if len(warnings) == 0 || warnings[0].Template != "Summary" || warnings[0].FieldID != "alias" {
		t.Fatalf("expected warnings stamped with template and field, got %+v", warnings)
	}
}
