package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fhirview/pkg/model"
	"github.com/goliatone/go-fhirview/pkg/workspace"
)

// stdinSource yields stdin on demand so it is only touched when a path is
// "-".
type stdinSource func() io.Reader

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin stdinSource) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin())
	}
	return os.ReadFile(path)
}

// loadPayload returns the base64 workspace payload stored at path. The file
// may hold the payload itself or a JSON/YAML workspace document, which is
// encoded on the fly.
func loadPayload(path string, stdin stdinSource) (string, error) {
	raw, err := readInput(path, stdin)
	if err != nil {
		return "", fmt.Errorf("read workspace: %w", err)
	}
	if ws, err := workspace.Parse(raw); err == nil {
		return workspace.Encode(ws)
	}
	return strings.TrimSpace(string(raw)), nil
}

// loadWorkspace decodes the workspace stored at path in either form accepted
// by loadPayload.
func loadWorkspace(path string, stdin stdinSource) (model.Workspace, error) {
	payload, err := loadPayload(path, stdin)
	if err != nil {
		return model.Workspace{}, err
	}
	return workspace.Decode(payload)
}

// loadData reads a resource written as JSON or YAML. An empty path means no
// resource.
func loadData(path string, stdin stdinSource) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := readInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return parseData(raw)
}

func parseData(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var data any
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return nil, fmt.Errorf("parse data: %w", err)
		}
		return data, nil
	}
	if err := yaml.Unmarshal(trimmed, &data); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return data, nil
}

// bufferedStdin reads r at most once so several loaders can share it.
func bufferedStdin(r io.Reader) stdinSource {
	var (
		once sync.Once
		buf  []byte
		err  error
	)
	return func() io.Reader {
		once.Do(func() {
			buf, err = io.ReadAll(r)
		})
		if err != nil {
			return errReader{err: err}
		}
		return bytes.NewReader(buf)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
