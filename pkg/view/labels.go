package view

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-fhirview/pkg/format"
)

// ItemLabelFunc produces the heading for one repeated widget item. Returning
// the empty string defers to the generic "<resourceType> <n>" label.
type ItemLabelFunc func(item map[string]any) string

// ItemLabeler holds item label generators keyed by resource type.
type ItemLabeler struct {
	mu     sync.RWMutex
	labels map[string]ItemLabelFunc
}

// NewItemLabeler returns a labeler preloaded with HumanName, ContactPoint,
// Address, and Patient generators.
func NewItemLabeler() *ItemLabeler {
	l := &ItemLabeler{labels: make(map[string]ItemLabelFunc)}
	l.registerBuiltins()
	return l
}

// Register adds or replaces the generator for resourceType.
func (l *ItemLabeler) Register(resourceType string, fn ItemLabelFunc) {
	l.mu.Lock()
	l.labels[resourceType] = fn
	l.mu.Unlock()
}

// Label returns the heading for item at index. Generators that panic fall
// back to the generic label.
func (l *ItemLabeler) Label(resourceType string, item any, index int) string {
	label, _ := l.generate(resourceType, item, index)
	return label
}

// generate reports a recovered generator panic as an error alongside the
// fallback label.
func (l *ItemLabeler) generate(resourceType string, item any, index int) (label string, err error) {
	fallback := genericItemLabel(resourceType, index)

	l.mu.RLock()
	fn, ok := l.labels[resourceType]
	l.mu.RUnlock()
	if !ok || fn == nil {
		return fallback, nil
	}

	record, ok := item.(map[string]any)
	if !ok {
		return fallback, nil
	}

	defer func() {
		if r := recover(); r != nil {
			label = fallback
			err = fmt.Errorf("view: item label for %s panicked: %v", resourceType, r)
		}
	}()
	if generated := strings.TrimSpace(fn(record)); generated != "" {
		return generated, nil
	}
	return fallback, nil
}

var defaultItemLabeler = NewItemLabeler()

// GenerateItemLabel labels item with the built-in generators.
func GenerateItemLabel(resourceType string, item any, index int) string {
	return defaultItemLabeler.Label(resourceType, item, index)
}

func genericItemLabel(resourceType string, index int) string {
	if resourceType == "" {
		resourceType = "Item"
	}
	return fmt.Sprintf("%s %d", resourceType, index+1)
}

func (l *ItemLabeler) registerBuiltins() {
	l.labels["HumanName"] = humanNameLabel
	l.labels["ContactPoint"] = contactPointLabel
	l.labels["Address"] = addressLabel
	l.labels["Patient"] = patientLabel
}

func humanNameLabel(name map[string]any) string {
	if full := joinNonEmpty(" ", firstString(name, "given"), strVal(name, "family")); full != "" {
		return full
	}
	if use := strVal(name, "use"); use != "" {
		return format.Capitalize(use) + " Name"
	}
	if prefix := firstString(name, "prefix"); prefix != "" {
		return prefix + " Name"
	}
	return ""
}

func contactPointLabel(point map[string]any) string {
	system := strVal(point, "system")
	if value := strVal(point, "value"); value != "" {
		heading := format.Capitalize(system)
		if heading == "" {
			heading = "Contact"
		}
		return heading + ": " + value
	}
	if use := strVal(point, "use"); use != "" {
		if system == "" {
			system = "contact"
		}
		return format.Capitalize(use) + " " + system
	}
	if system != "" {
		return format.Capitalize(system) + " Contact"
	}
	return ""
}

func addressLabel(addr map[string]any) string {
	line1 := firstString(addr, "line")
	city := strVal(addr, "city")
	state := strVal(addr, "state")

	switch {
	case line1 != "" && city != "":
		return line1 + ", " + city
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	case line1 != "":
		return line1
	}
	if use := strVal(addr, "use"); use != "" {
		return format.Capitalize(use) + " Address"
	}
	if kind := strVal(addr, "type"); kind != "" {
		return format.Capitalize(kind) + " Address"
	}
	return ""
}

func patientLabel(patient map[string]any) string {
	if names, ok := patient["name"].([]any); ok && len(names) > 0 {
		if first, ok := names[0].(map[string]any); ok {
			if full := joinNonEmpty(" ", firstString(first, "given"), strVal(first, "family")); full != "" {
				return full
			}
		}
	}
	if id := strVal(patient, "id"); id != "" {
		return "Patient " + id
	}
	return ""
}

func strVal(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// firstString returns the first non-empty string in the array at key.
func firstString(m map[string]any, key string) string {
	switch values := m[key].(type) {
	case []any:
		for _, v := range values {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	case []string:
		for _, s := range values {
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
