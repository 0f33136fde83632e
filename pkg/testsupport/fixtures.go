package testsupport

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

// SamplePatient returns a fresh Patient resource with names, telecom, and
// addresses populated.
func SamplePatient() map[string]any {
	return map[string]any{
		"resourceType": "Patient",
		"id":           "example",
		"active":       true,
		"gender":       "male",
		"birthDate":    "1974-12-25",
		"name": []any{
			map[string]any{"use": "official", "family": "Smith", "given": []any{"John", "Jacob"}},
			map[string]any{"use": "usual", "given": []any{"Jim"}},
		},
		"telecom": []any{
			map[string]any{"system": "phone", "value": "(03) 5555 6473", "use": "work"},
			map[string]any{"system": "email", "value": "john.smith@example.com"},
		},
		"address": []any{
			map[string]any{"use": "home", "line": []any{"534 Erewhon St"}, "city": "PleasantVille", "state": "Vic", "postalCode": "3999"},
		},
		"maritalStatus": map[string]any{"text": "Married"},
	}
}

// SampleWorkspace returns a workspace with a Patient summary template and a
// HumanName card used by its widget.
func SampleWorkspace() model.Workspace {
	return model.Workspace{
		ID:   "ws-sample",
		Name: "Sample",
		Templates: []model.Template{
			{
				ID:           "patient-summary",
				Name:         "Patient Summary",
				ResourceType: "Patient",
				Description:  "Core demographics",
				Fields: []model.Field{
					{ID: "title", Label: "Patient", Order: 0, Variant: model.LabelSpec{FontSize: "18", FontWeight: "bold"}},
					{ID: "fullName", Label: "Name", Order: 1, Expression: "firstName + ' ' + lastName", Variant: model.TextSpec{}},
					{ID: "dob", Label: "Date of Birth", Order: 2, FHIRPath: "birthDate", Variant: model.DateSpec{}},
					{ID: "gender", Label: "Gender", Order: 3, FHIRPath: "gender", Variant: model.SelectSpec{Options: []model.Option{
						{Value: "male", Label: "Male"}, {Value: "female", Label: "Female"},
					}}},
					{ID: "contact", Label: "Contact", Order: 4, Variant: model.GroupSpec{Children: []model.Field{
						{ID: "phone", Label: "Phone", FHIRPath: "telecom.find(t => t.system === 'phone').value", Variant: model.TextSpec{}},
						{ID: "email", Label: "Email", Expression: "email", Variant: model.TextSpec{}},
						{ID: "fax", Label: "Fax", FHIRPath: "fax", HideIfEmpty: true, Variant: model.TextSpec{}},
					}}},
					{ID: "names", Label: "Names", Order: 5, FHIRPath: "name", Variant: model.WidgetSpec{WidgetTemplateID: "name-card", Multiple: true}},
				},
			},
			{
				ID:           "name-card",
				Name:         "Name Card",
				ResourceType: "HumanName",
				Fields: []model.Field{
					{ID: "family", Label: "Family", FHIRPath: "family", Variant: model.TextSpec{}},
					{ID: "use", Label: "Use", FHIRPath: "use", Variant: model.TextSpec{}},
				},
				SampleData: map[string]any{"family": "Doe", "use": "official"},
			},
		},
	}
}

// EncodeWorkspace returns the base64 payload for ws.
func EncodeWorkspace(t *testing.T, ws model.Workspace) string {
	t.Helper()
	payload, err := workspace.Encode(ws)
	if err != nil {
		t.Fatalf("encode workspace: %v", err)
	}
	return payload
}

// MustTemplate decodes a template from JSON.
func MustTemplate(t *testing.T, raw string) model.Template {
	t.Helper()
	var tpl model.Template
	if err := json.Unmarshal([]byte(raw), &tpl); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	return tpl
}
