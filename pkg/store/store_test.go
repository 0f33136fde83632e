package store_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/store"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := store.NewRegistry()
	reg.MustRegister(model.Template{ID: "tpl-name", Name: "Name"})

	if err := reg.Register(model.Template{ID: "tpl-name"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(model.Template{}); err == nil {
		t.Fatalf("expected missing id to fail")
	}

	tpl, ok := reg.Get("tpl-name")
	if !ok || tpl.Name != "Name" {
		t.Fatalf("expected registered template, got %+v (ok=%v)", tpl, ok)
	}
	if reg.Has("missing") {
		t.Fatalf("expected missing id to be absent")
	}

	if err := reg.Put(model.Template{ID: "tpl-name", Name: "Renamed"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if tpl, _ := reg.Get("tpl-name"); tpl.Name != "Renamed" {
		t.Fatalf("expected Put to replace, got %q", tpl.Name)
	}
}

func TestChainReturnsFirstHit(t *testing.T) {
	t.Parallel()

	primary := store.NewRegistry()
	primary.MustRegister(model.Template{ID: "a", Name: "primary"})
	secondary := store.NewRegistry()
	secondary.MustRegister(model.Template{ID: "a", Name: "secondary"})
	secondary.MustRegister(model.Template{ID: "b", Name: "only-secondary"})

	chain := store.Chain(nil, primary, secondary)
	if tpl, _ := chain.Get("a"); tpl.Name != "primary" {
		t.Fatalf("expected primary hit, got %q", tpl.Name)
	}
	if tpl, _ := chain.Get("b"); tpl.Name != "only-secondary" {
		t.Fatalf("expected fallthrough to secondary, got %q", tpl.Name)
	}
	if _, ok := chain.Get("c"); ok {
		t.Fatalf("expected miss")
	}
}

func TestLoadFSReadsTemplatesAndWorkspaces(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"human-name.json": {Data: []byte(`{"id":"tpl-name","name":"Name","resourceType":"HumanName","fields":[{"id":"f","type":"text","fhirPath":"family"}]}`)},
		"nested/contacts.yaml": {Data: []byte(`
id: ws
name: Shared
templates:
  - id: tpl-contact
    name: Contact
    resourceType: ContactPoint
    fields:
      - id: value
        type: text
        fhirPath: value
  - id: tpl-address
    name: Address
    resourceType: Address
`)},
		"README.md": {Data: []byte("ignored")},
	}

	reg, err := store.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(reg.List(), ","); got != "tpl-address,tpl-contact,tpl-name" {
		t.Fatalf("unexpected ids: %s", got)
	}
	tpl, _ := reg.Get("tpl-contact")
	if len(tpl.Fields) != 1 || tpl.Fields[0].Type() != model.FieldTypeText {
		t.Fatalf("expected decoded fields, got %+v", tpl.Fields)
	}
}

func TestLoadFSRejectsBrokenFiles(t *testing.T) {
	t.Parallel()

	cases := map[string]fstest.MapFS{
		"empty":     {"a.json": {Data: []byte("  ")}},
		"no id":     {"a.json": {Data: []byte(`{"name":"x"}`)}},
		"duplicate": {"a.json": {Data: []byte(`{"id":"x"}`)}, "b.yaml": {Data: []byte("id: x")}},
		"garbage":   {"a.yaml": {Data: []byte("id: [unterminated")}},
	}
	for name, fsys := range cases {
		if _, err := store.LoadFS(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFSNil(t *testing.T) {
	t.Parallel()

	reg, err := store.LoadFS(nil)
	if err != nil || reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %v (err=%v)", reg.List(), err)
	}
}
