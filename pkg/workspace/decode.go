// Package workspace decodes the base64 workspace payload handed over by the
// authoring tool, looks templates up by name, and checks that a template fits
// the resource it is about to preview.
package workspace

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fhirview/pkg/model"
)

// ErrDecode wraps every payload decoding failure.
var ErrDecode = errors.New("workspace: decode failed")

// Decode turns a base64 encoded JSON payload into a Workspace. Every failure
// (bad base64, bad JSON, missing or non-array `templates`) wraps ErrDecode.
func Decode(payload string) (model.Workspace, error) {
	raw, err := DecodeBase64(payload)
	if err != nil {
		return model.Workspace{}, fmt.Errorf("%w: invalid base64: %w", ErrDecode, err)
	}
	return decodeJSON(raw)
}

// DecodeBase64 decodes standard base64, ignoring ASCII whitespace and
// tolerating missing padding.
func DecodeBase64(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, payload)
	if cleaned == "" {
		return nil, errors.New("empty payload")
	}

	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err == nil {
		return raw, nil
	}
	if len(cleaned)%4 != 0 {
		if unpadded, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "=")); rawErr == nil {
			return unpadded, nil
		}
	}
	return nil, err
}

// Parse reads a workspace document written as JSON or YAML, as found on disk
// before encoding.
func Parse(raw []byte) (model.Workspace, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return model.Workspace{}, fmt.Errorf("%w: empty document", ErrDecode)
	}
	if trimmed[0] == '{' {
		return decodeJSON(trimmed)
	}

	var probe map[string]any
	if err := yaml.Unmarshal(trimmed, &probe); err != nil {
		return model.Workspace{}, fmt.Errorf("%w: invalid YAML: %w", ErrDecode, err)
	}
	templates, present := probe["templates"]
	if !present || templates == nil {
		return model.Workspace{}, fmt.Errorf("%w: missing templates array", ErrDecode)
	}
	if _, ok := templates.([]any); !ok {
		return model.Workspace{}, fmt.Errorf("%w: templates is not an array", ErrDecode)
	}

	var ws model.Workspace
	if err := yaml.Unmarshal(trimmed, &ws); err != nil {
		return model.Workspace{}, fmt.Errorf("%w: invalid YAML: %w", ErrDecode, err)
	}
	return ws, nil
}

func decodeJSON(raw []byte) (model.Workspace, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return model.Workspace{}, fmt.Errorf("%w: invalid JSON: %w", ErrDecode, err)
	}

	templates := bytes.TrimSpace(probe["templates"])
	if len(templates) == 0 || bytes.Equal(templates, []byte("null")) {
		return model.Workspace{}, fmt.Errorf("%w: missing templates array", ErrDecode)
	}
	if templates[0] != '[' {
		return model.Workspace{}, fmt.Errorf("%w: templates is not an array", ErrDecode)
	}

	var ws model.Workspace
	if err := json.Unmarshal(raw, &ws); err != nil {
		return model.Workspace{}, fmt.Errorf("%w: invalid JSON: %w", ErrDecode, err)
	}
	return ws, nil
}

// Encode produces the base64 payload for ws.
func Encode(ws model.Workspace) (string, error) {
	if ws.Templates == nil {
		ws.Templates = []model.Template{}
	}
	raw, err := json.Marshal(ws)
	if err != nil {
		return "", fmt.Errorf("workspace: encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// EncodeDocument parses a JSON or YAML workspace document and encodes it.
func EncodeDocument(raw []byte) (string, error) {
	ws, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return Encode(ws)
}
