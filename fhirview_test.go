package fhirview_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-fhirview"
	"github.com/goliatone/go-fhirview/pkg/testsupport"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

const document = `
templates:
  - id: card
    name: Card
    resourceType: Patient
    fields:
      - id: gender
        type: select
        label: Gender
        fhirPath: gender
        options:
          - value: female
            label: Female
`

func TestGenerateFromDocument(t *testing.T) {
	t.Parallel()

	out, err := fhirview.GenerateFromDocument(context.Background(), []byte(document), "Card",
		map[string]any{"resourceType": "Patient", "gender": "female"}, "text")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "Gender: Female") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := fhirview.GenerateFromDocument(context.Background(), []byte("name: x"), "Card", nil, ""); !errors.Is(err, workspace.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestGenerateDefaultsToHTML(t *testing.T) {
	t.Parallel()

	payload := testsupport.EncodeWorkspace(t, testsupport.SampleWorkspace())
	out, err := fhirview.Generate(context.Background(), payload, "Patient Summary", testsupport.SamplePatient(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(out)), "<!DOCTYPE html>") {
		t.Fatalf("expected html document, got %.80s", out)
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	t.Parallel()

	if _, err := fs.Stat(fhirview.EmbeddedTemplates(), "page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	if _, err := fs.Stat(fhirview.AssetsFS(), "fhirview.css"); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
}
