package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Resolve walks a dotted path through nested maps and slices. The boolean is
// false when any segment is missing or the final value is nil.
func Resolve(record any, path string) (any, bool) {
	if path == "" {
		return record, record != nil
	}
	head, rest, _ := strings.Cut(path, ".")
	next, ok := child(record, head)
	if !ok {
		return nil, false
	}
	if rest == "" {
		return next, !isNil(next)
	}
	return Resolve(next, rest)
}

func child(node any, key string) (any, bool) {
	switch n := node.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case map[string]string:
		v, ok := n[key]
		return v, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return n[i], true
	}

	rv := reflect.ValueOf(node)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToRecord converts a struct into the generic tree the engine walks, using its
// JSON field names.
func ToRecord(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
