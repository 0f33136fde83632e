package fhirpath

import (
	"reflect"
	"strconv"
	"sync"
)

// maxCachedPaths bounds the parse cache; later paths are parsed uncached.
const maxCachedPaths = 4096

type parsed struct {
	path Path
	err  error
}

type parseCache struct {
	mu      sync.RWMutex
	entries map[string]parsed
}

var cache = &parseCache{entries: make(map[string]parsed)}

func (c *parseCache) lookup(path string) (Path, error) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return entry.path, entry.err
	}

	segments, err := Parse(path)

	c.mu.Lock()
	if len(c.entries) < maxCachedPaths {
		c.entries[path] = parsed{path: segments, err: err}
	}
	c.mu.Unlock()
	return segments, err
}

// Compile parses path through the shared cache.
func Compile(path string) (Path, error) {
	return cache.lookup(path)
}

// Resolve walks data along path. It returns (nil, false) when the path is
// malformed or any step is missing. A present JSON null resolves to
// (nil, true).
func Resolve(data any, path string) (any, bool) {
	segments, err := Compile(path)
	if err != nil {
		return nil, false
	}
	return segments.Resolve(data)
}

// Lookup is Resolve without the presence flag.
func Lookup(data any, path string) any {
	value, _ := Resolve(data, path)
	return value
}

// Resolve walks data along p.
func (p Path) Resolve(data any) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	current := data
	for _, seg := range p {
		if current == nil {
			return nil, false
		}
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, seg Segment) (any, bool) {
	switch node := current.(type) {
	case map[string]any:
		value, ok := node[seg.key()]
		return value, ok
	case []any:
		index, ok := seg.index()
		if !ok || index >= len(node) {
			return nil, false
		}
		return node[index], true
	}
	return stepReflect(current, seg)
}

func stepReflect(current any, seg Segment) (any, bool) {
	value := reflect.ValueOf(current)
	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		entry := value.MapIndex(reflect.ValueOf(seg.key()).Convert(value.Type().Key()))
		if !entry.IsValid() {
			return nil, false
		}
		return entry.Interface(), true
	case reflect.Slice, reflect.Array:
		index, ok := seg.index()
		if !ok || index >= value.Len() {
			return nil, false
		}
		return value.Index(index).Interface(), true
	}
	return nil, false
}

// key is the map key addressed by seg. Index segments address their decimal
// spelling so `obj[0]` reads key "0".
func (s Segment) key() string {
	if s.Kind == SegmentIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Name
}

// index is the slice position addressed by seg. Field segments spelled as
// decimals (`items['1']`) address positions too.
func (s Segment) index() (int, bool) {
	if s.Kind == SegmentIndex {
		return s.Index, true
	}
	n, err := strconv.Atoi(s.Name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
