// Package jsonutil holds JSON helpers shared by the chat decoder, the
// blueprint synthesizer, and the persistence layer.
package jsonutil

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"
)

// circularPlaceholder replaces any value that would close a reference
// cycle during marshalling.
const circularPlaceholder = "[Circular]"

// Matches text that is exactly one fenced code block, with an optional
// language tag after the opening backticks.
var fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\n?(.*?)\n?\\s*```$")

// StripFence trims s and, when the whole text is one fenced code block,
// returns the inner content. Models frequently wrap JSON replies in
// markdown fences despite being told not to.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return trimmed
}

// Marshal encodes v as JSON, replacing any node that re-enters its own
// ancestry with the "[Circular]" placeholder instead of failing the way
// encoding/json does on cyclic values.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(sanitize(reflect.ValueOf(v), make(map[uintptr]bool)))
}

// sanitize converts v into a plain value tree, cutting cycles. Only
// pointers and maps can introduce cycles; visited tracks the addresses on
// the current path.
func sanitize(v reflect.Value, visited map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), visited)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if visited[addr] {
			return circularPlaceholder
		}
		visited[addr] = true
		out := sanitize(v.Elem(), visited)
		delete(visited, addr)
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if visited[addr] {
			return circularPlaceholder
		}
		visited[addr] = true
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				key = stringifyKey(iter.Key())
			}
			out[key] = sanitize(iter.Value(), visited)
		}
		delete(visited, addr)
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = sanitize(v.Index(i), visited)
		}
		return out

	case reflect.Struct:
		return sanitizeStruct(v, visited)

	default:
		return v.Interface()
	}
}

func sanitizeStruct(v reflect.Value, visited map[uintptr]bool) any {
	// Types with custom encodings (time.Time and friends) marshal
	// themselves; they cannot participate in a cycle.
	if v.Type().Implements(jsonMarshalerType) || reflect.PointerTo(v.Type()).Implements(jsonMarshalerType) {
		return v.Interface()
	}

	out := make(map[string]any, v.NumField())
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitempty, skip := parseJSONTag(field)
		if skip {
			continue
		}
		fv := v.Field(i)
		if omitempty && fv.IsZero() {
			continue
		}
		out[name] = sanitize(fv, visited)
	}
	return out
}

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

func parseJSONTag(field reflect.StructField) (name string, omitempty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func stringifyKey(k reflect.Value) string {
	b, err := json.Marshal(k.Interface())
	if err != nil {
		return k.String()
	}
	return strings.Trim(string(b), `"`)
}
