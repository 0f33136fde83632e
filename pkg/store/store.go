// Package store provides the nested template lookup used by widget fields.
// The preview engine only needs Get; Registry is the in-memory default and
// LoadFS fills one from a directory of JSON or YAML files.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fhirview/pkg/model"
)

// Store resolves templates by id.
type Store interface {
	Get(id string) (model.Template, bool)
}

// Func adapts a function into a Store.
type Func func(id string) (model.Template, bool)

// Get calls fn.
func (fn Func) Get(id string) (model.Template, bool) {
	if fn == nil {
		return model.Template{}, false
	}
	return fn(id)
}

// Chain consults each store in order and returns the first hit.
func Chain(stores ...Store) Store {
	return Func(func(id string) (model.Template, bool) {
		for _, s := range stores {
			if s == nil {
				continue
			}
			if tpl, ok := s.Get(id); ok {
				return tpl, true
			}
		}
		return model.Template{}, false
	})
}

// Registry stores templates by id. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]model.Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]model.Template)}
}

// FromWorkspace registers every template in ws. Templates without an id are
// skipped since nothing can reference them.
func FromWorkspace(ws model.Workspace) (*Registry, error) {
	reg := NewRegistry()
	for _, tpl := range ws.Templates {
		if strings.TrimSpace(tpl.ID) == "" {
			continue
		}
		if err := reg.Register(tpl); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a template by id. Duplicate ids return an error.
func (r *Registry) Register(tpl model.Template) error {
	id := strings.TrimSpace(tpl.ID)
	if id == "" {
		return fmt.Errorf("store: template id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[id]; exists {
		return fmt.Errorf("store: template %q already registered", id)
	}
	r.templates[id] = tpl
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(tpl model.Template) {
	if err := r.Register(tpl); err != nil {
		panic(err)
	}
}

// Put adds or replaces a template.
func (r *Registry) Put(tpl model.Template) error {
	id := strings.TrimSpace(tpl.ID)
	if id == "" {
		return fmt.Errorf("store: template id is required")
	}
	r.mu.Lock()
	r.templates[id] = tpl
	r.mu.Unlock()
	return nil
}

// Get returns the template registered under id.
func (r *Registry) Get(id string) (model.Template, bool) {
	if r == nil {
		return model.Template{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[strings.TrimSpace(id)]
	return tpl, ok
}

// List returns the registered ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}
