package docstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType            = reflect.TypeFor[time.Time]()
	serverTimestampType = reflect.TypeFor[serverTimestamp]()
	marshalerType       = reflect.TypeFor[json.Marshaler]()
)

// Encode converts a struct or map into the stored document form using JSON
// field names. time.Time values become TimeLayout strings; strings are kept
// verbatim. ServerTimestamp is left unresolved until the store writes.
func Encode(v any) (Document, error) {
	return encodeDocument(v, ServerTimestamp)
}

// normalize encodes data for storage, resolving ServerTimestamp to now.
func normalize(data any, now time.Time) (Document, error) {
	return encodeDocument(data, now.UTC().Format(TimeLayout))
}

// normalizeValue applies normalize to a single value such as a filter operand.
func normalizeValue(v any, now time.Time) (any, error) {
	doc, err := normalize(map[string]any{"v": v}, now)
	if err != nil {
		return nil, err
	}
	return doc["v"], nil
}

func encodeDocument(data any, stamp any) (Document, error) {
	e := encoder{stamp: stamp}
	out, err := e.encode(reflect.ValueOf(data))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	switch doc := out.(type) {
	case nil:
		return Document{}, nil
	case map[string]any:
		return doc, nil
	}
	return nil, fmt.Errorf("encode document: %T is not an object", data)
}

// encoder replaces ServerTimestamp with stamp.
type encoder struct {
	stamp any
}

func (e encoder) encode(rv reflect.Value) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}
	switch rv.Type() {
	case timeType:
		return rv.Interface().(time.Time).UTC().Format(TimeLayout), nil
	case serverTimestampType:
		return e.stamp, nil
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Kind() == reflect.Pointer && rv.Type().Implements(marshalerType) && rv.Elem().Type() != timeType {
			return e.marshaled(rv)
		}
		return e.encode(rv.Elem())
	}
	if rv.Type().Implements(marshalerType) {
		return e.marshaled(rv)
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("unsupported number %v", f)
		}
		return f, nil
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes()), nil
		}
		return e.encodeList(rv)
	case reflect.Array:
		return e.encodeList(rv)
	case reflect.Struct:
		out := map[string]any{}
		if err := e.encodeStruct(rv, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", rv.Type())
}

// marshaled defers to a type's own JSON encoding.
func (e encoder) marshaled(rv reflect.Value) (any, error) {
	raw, err := json.Marshal(rv.Interface())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e encoder) encodeMap(rv reflect.Value) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		val, err := e.encode(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

func mapKey(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("unsupported map key %s", k.Type())
}

func (e encoder) encodeList(rv reflect.Value) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		val, err := e.encode(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

// encodeStruct writes exported fields into out following encoding/json tag
// rules: renames, "-", omitempty and promoted fields of untagged embeds.
func (e encoder) encodeStruct(rv reflect.Value, out map[string]any) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if f.Anonymous && name == "" {
			embedded := fv
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && embedded.Type() != timeType {
				if err := e.encodeStruct(embedded, out); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		val, err := e.encode(fv)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out[name] = val
	}
	return nil
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
