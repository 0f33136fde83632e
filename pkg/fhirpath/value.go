package fhirpath

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// String converts a resolved value into text: strings verbatim, numbers in
// shortest decimal form, booleans as true/false, arrays joined by commas and
// objects as JSON. nil becomes the empty string.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return JSON(v)
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = String(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct:
		return JSON(value)
	}
	return fmt.Sprint(value)
}

// JSON encodes value without HTML escaping. Values that cannot be encoded
// fall back to fmt formatting.
func JSON(value any) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
