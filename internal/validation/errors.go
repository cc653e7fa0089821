package validation

import (
	"fmt"

	dErrors "fooddrop/pkg/domain-errors"
)

// Error is one violated constraint. Field and Rule are stable so callers can
// address the problem per field.
type Error struct {
	Field   string
	Rule    string
	Value   any
	Message string
}

func (e *Error) Error() string { return e.Message }

// FieldName returns the dotted path of the offending field.
func (e *Error) FieldName() string { return e.Field }

// DomainCode classifies validation failures for the transport layer.
func (e *Error) DomainCode() dErrors.Code { return dErrors.CodeValidation }

func newError(field string, rule Kind, value any, format string, args ...any) *Error {
	return &Error{
		Field:   field,
		Rule:    string(rule),
		Value:   value,
		Message: fmt.Sprintf("field '%s' ", field) + fmt.Sprintf(format, args...),
	}
}

// Messages flattens violations into their messages.
func Messages(errs []*Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
