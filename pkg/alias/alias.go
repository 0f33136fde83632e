// Package alias maps short, author-friendly field names onto canonical
// resource paths, per resource type. Two Patient aliases (`email`, `phone`)
// map onto `telecom.find(...)` special forms that the path resolver cannot
// execute; ResolveSpecialForm handles those by scanning the telecom array
// directly.
package alias

import (
	"sort"
	"strings"

	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/fhirpath"
	"github.com/goliatone/go-fhirview/pkg/model"
)

// Resource types with alias sets.
const (
	Patient      = "Patient"
	HumanName    = "HumanName"
	ContactPoint = "ContactPoint"
	Address      = "Address"
)

// Special forms for the Patient telecom aliases.
const (
	EmailForm = "telecom.find(t => t.system === 'email').value"
	PhoneForm = "telecom.find(t => t.system === 'phone').value"
)

var table = map[string]map[string]string{
	Patient: {
		"id":            "id",
		"firstName":     "name[0].given[0]",
		"middleName":    "name[0].given[1]",
		"lastName":      "name[0].family",
		"prefix":        "name[0].prefix[0]",
		"suffix":        "name[0].suffix[0]",
		"gender":        "gender",
		"birthDate":     "birthDate",
		"active":        "active",
		"email":         EmailForm,
		"phone":         PhoneForm,
		"addressLine":   "address[0].line[0]",
		"city":          "address[0].city",
		"state":         "address[0].state",
		"postalCode":    "address[0].postalCode",
		"country":       "address[0].country",
		"maritalStatus": "maritalStatus.text",
	},
	HumanName: {
		"use":        "use",
		"family":     "family",
		"given":      "given[0]",
		"firstName":  "given[0]",
		"middleName": "given[1]",
		"prefix":     "prefix[0]",
		"suffix":     "suffix[0]",
		"text":       "text",
	},
	ContactPoint: {
		"system": "system",
		"value":  "value",
		"use":    "use",
		"rank":   "rank",
	},
	Address: {
		"use":        "use",
		"type":       "type",
		"line1":      "line[0]",
		"line2":      "line[1]",
		"city":       "city",
		"district":   "district",
		"state":      "state",
		"postalCode": "postalCode",
		"country":    "country",
		"text":       "text",
	},
}

// For returns a copy of the alias map for resourceType. Unknown resource
// types yield an empty map.
func For(resourceType string) map[string]string {
	aliases := table[resourceType]
	out := make(map[string]string, len(aliases))
	for name, path := range aliases {
		out[name] = path
	}
	return out
}

// Lookup returns the canonical path or special form for one alias.
func Lookup(resourceType, name string) (string, bool) {
	path, ok := table[resourceType][name]
	return path, ok
}

// Names lists the aliases for resourceType, longest first, ties broken
// alphabetically.
func Names(resourceType string) []string {
	aliases := table[resourceType]
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// ResourceTypes lists the resource types that carry aliases.
func ResourceTypes() []string {
	types := make([]string, 0, len(table))
	for rt := range table {
		types = append(types, rt)
	}
	sort.Strings(types)
	return types
}

// Table resolves aliases against resources and reports misses.
type Table struct {
	reporter diagnostics.Reporter
}

// Option configures a Table.
type Option func(*Table)

// WithReporter routes alias misses to reporter.
func WithReporter(reporter diagnostics.Reporter) Option {
	return func(t *Table) {
		t.reporter = reporter
	}
}

// NewTable builds a Table.
func NewTable(options ...Option) *Table {
	t := &Table{}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	t.reporter = diagnostics.OrNop(t.reporter)
	return t
}

// Resolve returns the display string for alias name against data. A name
// with no entry for the resource type yields the placeholder `[name?]` and a
// warning. Aliases that resolve to nothing yield the empty string.
func (t *Table) Resolve(data model.Resource, name string) string {
	resourceType := model.ResourceTypeOf(data)
	path, ok := Lookup(resourceType, name)
	if !ok {
		t.reporter.Warn(diagnostics.Warning{
			Code:    diagnostics.CodeAliasMiss,
			Message: "alias not defined for resource type",
			Detail:  resourceType + "." + name,
		})
		return "[" + name + "?]"
	}
	return ResolvePath(data, path)
}

// ResolvePath resolves a canonical path or special form to display text.
func ResolvePath(data any, path string) string {
	if IsSpecialForm(path) {
		value, _ := ResolveSpecialForm(data, path)
		return value
	}
	value, ok := fhirpath.Resolve(data, path)
	if !ok || value == nil {
		return ""
	}
	return fhirpath.String(value)
}

const findMarker = "telecom.find("

// IsSpecialForm reports whether s contains a telecom predicate lookup.
func IsSpecialForm(s string) bool {
	return strings.Contains(s, findMarker)
}

// ResolveSpecialForm scans the telecom array selected by form for the first
// entry whose system matches the literal named in the form (email or phone)
// and returns its value. Any path text before `telecom.find(` selects the
// owner of the telecom array, so `contact[0].telecom.find(...)` reads the
// first contact's telecom. The boolean is false when no entry matches.
func ResolveSpecialForm(data any, form string) (string, bool) {
	idx := strings.Index(form, findMarker)
	if idx < 0 {
		return "", false
	}

	system := SystemOf(form[idx:])
	if system == "" {
		return "", false
	}

	owner := data
	if prefix := strings.TrimSuffix(strings.TrimSpace(form[:idx]), "."); prefix != "" {
		resolved, ok := fhirpath.Resolve(data, prefix)
		if !ok {
			return "", false
		}
		owner = resolved
	}

	telecom, ok := fhirpath.Resolve(owner, "telecom")
	if !ok {
		return "", false
	}
	entries, ok := telecom.([]any)
	if !ok {
		return "", false
	}
	for _, entry := range entries {
		point, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if s, _ := point["system"].(string); s == system {
			return fhirpath.String(point["value"]), true
		}
	}
	return "", false
}

// SystemOf returns the telecom system named by a special form, email or
// phone, or the empty string.
func SystemOf(form string) string {
	switch {
	case strings.Contains(form, "email"):
		return "email"
	case strings.Contains(form, "phone"):
		return "phone"
	default:
		return ""
	}
}
