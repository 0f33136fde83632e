package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-fhirview/pkg/testsupport"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func sampleDocument(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(testsupport.SampleWorkspace())
	if err != nil {
		t.Fatalf("marshal workspace: %v", err)
	}
	return string(raw)
}

func TestEncodeThenListTemplates(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.json", sampleDocument(t))

	payload, err := run(t, "", "encode", "--workspace", doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := workspace.Decode(strings.TrimSpace(payload)); err != nil {
		t.Fatalf("expected decodable payload, got %v", err)
	}

	out, err := run(t, payload, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	want := "Patient Summary\tPatient\tpatient-summary\nName Card\tHumanName\tname-card\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestEncodeAssignsIDs(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.yaml", "templates:\n  - name: Bare\n    fields:\n      - type: text\n        fhirPath: gender\n")

	out, err := run(t, "", "encode", "--workspace", doc, "--assign-ids", "--yaml")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ws, err := workspace.Parse([]byte(out))
	if err != nil {
		t.Fatalf("parse yaml output: %v", err)
	}
	if ws.Templates[0].ID == "" || ws.Templates[0].Fields[0].ID == "" {
		t.Fatalf("expected ids to be filled, got %+v", ws.Templates[0])
	}
}

func TestRenderText(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.json", sampleDocument(t))
	data := writeFile(t, dir, "patient.yaml", "resourceType: Patient\nname:\n  - given: [Ada]\n    family: Lovelace\ngender: female\n")

	out, err := run(t, "", "render", "--workspace", doc, "--data", data, "--template", "Patient Summary", "--renderer", "text")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Patient Summary [Patient]", "Name: Ada Lovelace", "Gender: Female", "- Ada Lovelace"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	output := filepath.Join(dir, "out.json")
	if _, err := run(t, "", "render", "-w", doc, "-d", data, "-t", "Patient Summary", "--renderer", "json", "-o", output); err != nil {
		t.Fatalf("render json: %v", err)
	}
	written, err := os.ReadFile(output)
	if err != nil || !strings.Contains(string(written), "Ada Lovelace") {
		t.Fatalf("expected json output file, got %v", err)
	}
}

func TestRenderRequiresTemplateOffTerminal(t *testing.T) {
	previous := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = previous })

	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.json", sampleDocument(t))

	_, err := run(t, "", "render", "--workspace", doc)
	if err == nil || !strings.Contains(err.Error(), "--template is required") {
		t.Fatalf("expected template requirement, got %v", err)
	}
}

func TestRenderRejectsUnknownTheme(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.json", sampleDocument(t))

	_, err := run(t, "", "render", "--workspace", doc, "--template", "Patient Summary", "--theme", "sepia")
	if err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Fatalf("expected theme validation error, got %v", err)
	}
}

func TestValidateReportsIssues(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "workspace.json", `{"templates":[{"name":"A","fields":[{"id":"w","type":"widget"}]}]}`)

	out, err := run(t, "", "validate", "--workspace", doc)
	if err == nil || !strings.Contains(err.Error(), "issue(s) found") {
		t.Fatalf("expected issues error, got %v", err)
	}
	if !strings.Contains(out, "templates[0].fields[0]") {
		t.Fatalf("expected issue path, got %q", out)
	}

	clean := writeFile(t, dir, "clean.json", sampleDocument(t))
	out, err = run(t, "", "validate", "--workspace", clean)
	if err != nil || !strings.Contains(out, "workspace is valid") {
		t.Fatalf("expected valid workspace, got %q (%v)", out, err)
	}
}

func TestParseData(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{"resourceType":"Patient"}`, "resourceType: Patient\n"} {
		data, err := parseData([]byte(raw))
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		record, ok := data.(map[string]any)
		if !ok || record["resourceType"] != "Patient" {
			t.Fatalf("unexpected data %#v", data)
		}
	}
	if data, err := parseData([]byte("  ")); data != nil || err != nil {
		t.Fatalf("expected empty data, got %v (%v)", data, err)
	}
}
