package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fhirview/pkg/model"
)

// document is either a single template or a workspace carrying templates.
type document struct {
	model.Template `yaml:",inline"`
	Templates      []model.Template `json:"templates" yaml:"templates"`
}

// LoadFS walks fsys and registers every template found in JSON or YAML
// files. A file holds either one template or a workspace document with a
// `templates` array. When fsys is nil the returned registry is empty.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := NewRegistry()
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("store: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		templates := doc.Templates
		if len(templates) == 0 {
			templates = []model.Template{doc.Template}
		}
		for _, tpl := range templates {
			if strings.TrimSpace(tpl.ID) == "" {
				return fmt.Errorf("store: file %s defines a template without an id", path)
			}
			if err := reg.Register(tpl); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func parseDocument(data []byte, source string) (document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return document{}, fmt.Errorf("store: file %s is empty", source)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = document{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return document{}, fmt.Errorf("store: parse %s: invalid JSON or YAML", source)
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
