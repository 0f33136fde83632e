package fhirpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveNestedIndexedPath(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"a": map[string]any{
			"b": []any{map[string]any{"c": 5}},
		},
	}

	got, ok := Resolve(data, "a.b[0].c")
	if !ok || got != 5 {
		t.Fatalf("expected 5, got %v (ok=%v)", got, ok)
	}

	if got, ok := Resolve(data, "a.x.c"); ok || got != nil {
		t.Fatalf("expected missing path to resolve to nil, got %v (ok=%v)", got, ok)
	}
	if got, ok := Resolve(data, "a.b[3].c"); ok || got != nil {
		t.Fatalf("expected out of range index to resolve to nil, got %v", got)
	}
	if _, ok := Resolve(nil, "a"); ok {
		t.Fatalf("expected nil data to resolve to nothing")
	}
}

func TestResolveQuotedAndMixedSegments(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"extension": map[string]any{
			"http://x.org/a.b": []any{"first", "second"},
		},
		"items": []any{"zero", "one"},
		"byKey": map[string]any{"0": "keyed"},
	}

	if got, _ := Resolve(data, "extension['http://x.org/a.b'][1]"); got != "second" {
		t.Fatalf("expected second, got %v", got)
	}
	if got, _ := Resolve(data, `items["1"]`); got != "one" {
		t.Fatalf("expected quoted numeric key to index arrays, got %v", got)
	}
	if got, _ := Resolve(data, "byKey[0]"); got != "keyed" {
		t.Fatalf("expected numeric index to address map key, got %v", got)
	}
}

func TestResolveExplicitNull(t *testing.T) {
	t.Parallel()

	data := map[string]any{"a": nil}
	got, ok := Resolve(data, "a")
	if !ok || got != nil {
		t.Fatalf("expected present null, got %v (ok=%v)", got, ok)
	}
	if _, ok := Resolve(data, "a.b"); ok {
		t.Fatalf("expected traversal through null to stop")
	}
}

func TestResolveTypedCollections(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"given": []string{"John", "Quincy"},
		"meta":  map[string]string{"source": "ehr"},
	}
	if got, _ := Resolve(data, "given[1]"); got != "Quincy" {
		t.Fatalf("expected Quincy, got %v", got)
	}
	if got, _ := Resolve(data, "meta.source"); got != "ehr" {
		t.Fatalf("expected ehr, got %v", got)
	}
}

func TestResolveMalformedPathsFailSilently(t *testing.T) {
	t.Parallel()

	data := map[string]any{"a": map[string]any{"b": 1}}
	for _, path := range []string{"", "a..b", "a.", "a[", "a[x]", "a]b", "a[0", ".a", "a['b"} {
		if got, ok := Resolve(data, path); ok || got != nil {
			t.Fatalf("expected %q to resolve to nothing, got %v", path, got)
		}
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse("name[0")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if syntaxErr.Path != "name[0" {
		t.Fatalf("expected path recorded on error, got %q", syntaxErr.Path)
	}

	if _, err := Parse("   "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestPathStringIsCanonical(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"name[0].given[1]":       "name[0].given[1]",
		" address [0] . line":    "address[0].line",
		`extension["a.b"].value`: "extension['a.b'].value",
		"['x y']":                "['x y']",
	}
	for input, want := range cases {
		path, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := path.String(); got != want {
			t.Fatalf("expected %q to render as %q, got %q", input, want, got)
		}
	}
}

func TestCompileCachesParses(t *testing.T) {
	t.Parallel()

	first, err := Compile("contact[0].name.family")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, _ := Compile("contact[0].name.family")
	if &first[0] != &second[0] {
		t.Fatalf("expected cached parse to be reused")
	}
}

func TestScanFindsMaximalRunsOutsideQuotes(t *testing.T) {
	t.Parallel()

	refs := Scan(`name[0].given[0] + ' name[9] ' + lastName + address[0].line[1].`)
	var got []string
	for _, ref := range refs {
		got = append(got, ref.Text)
	}
	want := []string{"name[0].given[0]", "lastName", "address[0].line[1]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scan mismatch (-want +got):\n%s", diff)
	}
	if !refs[0].Indexed() || refs[1].Indexed() {
		t.Fatalf("expected only indexed runs to report Indexed")
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(3), "3"},
		{1.5, "1.5"},
		{true, "true"},
		{[]any{"a", "b"}, "a,b"},
		{map[string]any{"k": "<v>"}, `{"k":"<v>"}`},
	}
	for _, tc := range cases {
		if got := String(tc.in); got != tc.want {
			t.Fatalf("String(%#v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
