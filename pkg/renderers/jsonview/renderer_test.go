package jsonview_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fhirview/pkg/render"
	"github.com/goliatone/go-fhirview/pkg/renderers/jsonview"
	"github.com/goliatone/go-fhirview/pkg/view"
)

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	v := &view.View{TemplateName: "Summary", Icon: view.IconPerson, Nodes: []*view.Node{
		{Key: "fields[0]", FieldID: "n", Kind: view.KindValue, Label: "Name", Value: "O'Brien & <Co>"},
	}}
	out, err := jsonview.New(jsonview.WithIndent("")).Render(context.Background(), v, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"view":{"templateName":"Summary","icon":"person","nodes":[{"key":"fields[0]","fieldId":"n","kind":"value","label":"Name","value":"O'Brien & <Co>"}]}}` + "\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderJSONError(t *testing.T) {
	t.Parallel()

	out, err := jsonview.New().Render(context.Background(), nil, render.RenderOptions{Err: errors.New("bad payload"), ShowErrors: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc jsonview.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Error != "bad payload" || doc.View != nil {
		t.Fatalf("unexpected document: %+v", doc)
	}
}
