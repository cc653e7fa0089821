package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"
)

// Validate evaluates rules in order and returns every violation in that order.
// A missing required field yields one "required" violation; a type mismatch
// yields one "type" violation. Either ends the checks for that rule.
func Validate(record any, rules []Rule) []*Error {
	var errs []*Error
	for _, rule := range rules {
		errs = append(errs, validateRule(record, rule)...)
	}
	return errs
}

// IsValid reports whether the record satisfies every rule.
func IsValid(record any, rules []Rule) bool {
	return len(Validate(record, rules)) == 0
}

// Check returns the first violation, or nil.
func Check(record any, rules []Rule) error {
	if errs := Validate(record, rules); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func validateRule(record any, rule Rule) []*Error {
	value, ok := Resolve(record, rule.Field)
	if !ok {
		if rule.Required {
			return []*Error{newError(rule.Field, "required", nil, "is required")}
		}
		return nil
	}

	actual := rule.Type
	if actual == "" {
		actual = typeOf(value)
	} else if !hasType(value, rule.Type) {
		return []*Error{newError(rule.Field, "type", value, "must be of type %s", rule.Type)}
	}

	var errs []*Error
	for _, c := range rule.Constraints {
		if !c.appliesTo(actual) {
			continue
		}
		if err := check(rule.Field, actual, value, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func check(field string, t FieldType, value any, c Constraint) *Error {
	switch c.Kind {
	case KindMinLength:
		if n := length(value); n < c.Length {
			if t == TypeArray {
				return newError(field, c.Kind, value, "must have at least %d items", c.Length)
			}
			return newError(field, c.Kind, value, "must be at least %d characters", c.Length)
		}
	case KindMaxLength:
		if n := length(value); n > c.Length {
			if t == TypeArray {
				return newError(field, c.Kind, value, "must not have more than %d items", c.Length)
			}
			return newError(field, c.Kind, value, "must not exceed %d characters", c.Length)
		}
	case KindPattern:
		re, err := compilePattern(c.Pattern)
		str, _ := asString(value)
		if err != nil || !re.MatchString(str) {
			return newError(field, c.Kind, value, "does not match required pattern")
		}
	case KindMin:
		if n, _ := toFloat(value); n < c.Bound {
			return newError(field, c.Kind, value, "must be at least %s", formatNumber(c.Bound))
		}
	case KindMax:
		if n, _ := toFloat(value); n > c.Bound {
			return newError(field, c.Kind, value, "must not exceed %s", formatNumber(c.Bound))
		}
	case KindOneOf:
		for _, allowed := range c.Values {
			if equal(value, allowed) {
				return nil
			}
		}
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = fmt.Sprint(v)
		}
		return newError(field, c.Kind, value, "must be one of: %s", strings.Join(parts, ", "))
	case KindCustom:
		if c.Check != nil && !c.Check(value) {
			if c.Message != "" {
				return newError(field, c.Kind, value, "%s", c.Message)
			}
			return newError(field, c.Kind, value, "failed custom validation")
		}
	}
	return nil
}

func hasType(value any, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := asString(value)
		return ok
	case TypeNumber:
		n, ok := toFloat(value)
		return ok && !math.IsNaN(n)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		k := reflect.TypeOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeObject:
		if isTimestamp(value) {
			return false
		}
		rv := reflect.Indirect(reflect.ValueOf(value))
		return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
	case TypeTimestamp:
		return isTimestamp(value)
	default:
		return true
	}
}

func typeOf(value any) FieldType {
	for _, t := range []FieldType{TypeTimestamp, TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject} {
		if hasType(value, t) {
			return t
		}
	}
	return ""
}

// isTimestamp accepts time values and their RFC 3339 document encoding.
func isTimestamp(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case *time.Time:
		return v != nil
	case string:
		if len(v) < len("2006-01-02T15:04:05Z") || !strings.Contains(v, "T") {
			return false
		}
		_, err := time.Parse(time.RFC3339Nano, v)
		return err == nil
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// asString accepts string and named string types.
func asString(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func length(value any) int {
	if s, ok := asString(value); ok {
		return utf8.RuneCountInString(s)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len()
	}
	return 0
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	if sa, ok := asString(a); ok {
		sb, ok := asString(b)
		return ok && sa == sb
	}
	return reflect.DeepEqual(a, b)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
