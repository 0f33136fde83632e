package view

import "testing"

func TestGenerateItemLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		resourceType string
		item         any
		want         string
	}{
		{"name full", "HumanName", map[string]any{"given": []any{"", "Ann"}, "family": "Lee"}, "Ann Lee"},
		{"name family only", "HumanName", map[string]any{"family": "Lee"}, "Lee"},
		{"name use", "HumanName", map[string]any{"use": "maiden"}, "Maiden Name"},
		{"name prefix", "HumanName", map[string]any{"prefix": []any{"Dr."}}, "Dr. Name"},
		{"name empty", "HumanName", map[string]any{}, "HumanName 3"},
		{"contact value", "ContactPoint", map[string]any{"system": "email", "value": "a@b.c"}, "Email: a@b.c"},
		{"contact use", "ContactPoint", map[string]any{"system": "phone", "use": "work"}, "Work phone"},
		{"contact system", "ContactPoint", map[string]any{"system": "fax"}, "Fax Contact"},
		{"address line city", "Address", map[string]any{"line": []any{"1 Main St"}, "city": "Springfield"}, "1 Main St, Springfield"},
		{"address city state", "Address", map[string]any{"city": "Springfield", "state": "IL"}, "Springfield, IL"},
		{"address city", "Address", map[string]any{"city": "Springfield"}, "Springfield"},
		{"address line", "Address", map[string]any{"line": []any{"1 Main St"}}, "1 Main St"},
		{"address use", "Address", map[string]any{"use": "home"}, "Home Address"},
		{"address type", "Address", map[string]any{"type": "postal"}, "Postal Address"},
		{"patient name", "Patient", map[string]any{"name": []any{map[string]any{"given": []any{"Jo"}, "family": "Ray"}}}, "Jo Ray"},
		{"patient id", "Patient", map[string]any{"id": "p9"}, "Patient p9"},
		{"unknown type", "Observation", map[string]any{"id": "o1"}, "Observation 3"},
		{"no type", "", map[string]any{}, "Item 3"},
		{"not an object", "HumanName", "Jane", "HumanName 3"},
	}
	for _, tc := range cases {
		if got := GenerateItemLabel(tc.resourceType, tc.item, 2); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestItemLabelerRecoversFromPanics(t *testing.T) {
	t.Parallel()

	labeler := NewItemLabeler()
	labeler.Register("HumanName", func(map[string]any) string {
		panic("boom")
	})

	label, err := labeler.generate("HumanName", map[string]any{"family": "Lee"}, 0)
	if label != "HumanName 1" {
		t.Fatalf("expected generic fallback, got %q", label)
	}
	if err == nil {
		t.Fatalf("expected recovered panic to be reported")
	}
	if got := labeler.Label("HumanName", map[string]any{}, 4); got != "HumanName 5" {
		t.Fatalf("expected generic fallback from Label, got %q", got)
	}
}

func TestIconFor(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Patient":      IconPerson,
		"HumanName":    IconName,
		"ContactPoint": IconContact,
		"Address":      IconAddress,
		"Observation":  IconResource,
		"":             IconResource,
	}
	for resourceType, want := range cases {
		if got := IconFor(resourceType); got != want {
			t.Fatalf("IconFor(%q): expected %q, got %q", resourceType, want, got)
		}
	}
}
