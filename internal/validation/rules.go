// Package validation evaluates records against declarative field rules.
//
// Rules are plain data: a dotted field path, a required flag, an expected type
// and a list of tagged constraints. Rule sets can be built and serialized
// without the engine; the engine walks the record tree and reports every
// violation in rule order.
package validation

import (
	"regexp"
	"sync"
)

// FieldType is the semantic type a field must have.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeArray     FieldType = "array"
	TypeObject    FieldType = "object"
	TypeTimestamp FieldType = "timestamp"
)

// Kind tags a constraint variant.
type Kind string

const (
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindPattern   Kind = "pattern"
	KindMin       Kind = "min"
	KindMax       Kind = "max"
	KindOneOf     Kind = "allowedValues"
	KindCustom    Kind = "custom"
)

// Predicate is a named custom check. It receives the resolved field value.
type Predicate func(value any) bool

// Constraint is one tagged check on a field. Only the payload fields relevant
// to Kind are set.
type Constraint struct {
	Kind    Kind    `json:"kind"`
	Length  int     `json:"length,omitempty"`
	Bound   float64 `json:"bound,omitempty"`
	Pattern string  `json:"pattern,omitempty"`
	Values  []any   `json:"values,omitempty"`
	Name    string  `json:"name,omitempty"`
	Message string  `json:"message,omitempty"`

	Check Predicate `json:"-"`
}

// Rule describes one field of a record.
type Rule struct {
	Field       string       `json:"field"`
	Required    bool         `json:"required,omitempty"`
	Type        FieldType    `json:"type,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Field starts a rule for the given dotted path.
func Field(path string, t FieldType, constraints ...Constraint) Rule {
	return Rule{Field: path, Type: t, Constraints: constraints}
}

// RequiredField starts a required rule for the given dotted path.
func RequiredField(path string, t FieldType, constraints ...Constraint) Rule {
	return Rule{Field: path, Required: true, Type: t, Constraints: constraints}
}

func MinLength(n int) Constraint { return Constraint{Kind: KindMinLength, Length: n} }

func MaxLength(n int) Constraint { return Constraint{Kind: KindMaxLength, Length: n} }

func Pattern(expr string) Constraint { return Constraint{Kind: KindPattern, Pattern: expr} }

func Min(n float64) Constraint { return Constraint{Kind: KindMin, Bound: n} }

func Max(n float64) Constraint { return Constraint{Kind: KindMax, Bound: n} }

// OneOf restricts the value to an allow-list.
func OneOf[T any](values ...T) Constraint {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Constraint{Kind: KindOneOf, Values: vs}
}

// Custom attaches a named predicate. The name survives serialization; the
// function does not.
func Custom(name string, check Predicate, message string) Constraint {
	return Constraint{Kind: KindCustom, Name: name, Check: check, Message: message}
}

// appliesTo reports whether the constraint is relevant for a value of type t.
func (c Constraint) appliesTo(t FieldType) bool {
	switch c.Kind {
	case KindMinLength, KindMaxLength:
		return t == TypeString || t == TypeArray
	case KindPattern:
		return t == TypeString
	case KindMin, KindMax:
		return t == TypeNumber
	default:
		return true
	}
}

var patternCache sync.Map

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patternCache.Store(expr, re)
	return re, nil
}
