// Package apperr defines the domain error taxonomy shared by the service and
// HTTP layers: not-found, validation, and everything else (store failures).
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the sentinel for lookups on ids that do not exist. Wrap it
// with NotFound so the message names the resource and identifier.
var ErrNotFound = errors.New("not found")

// NotFound returns an error wrapping ErrNotFound for the given resource/id.
func NotFound(resource string, id int64) error {
	return fmt.Errorf("%s with id %d %w", resource, id, ErrNotFound)
}

// ValidationError reports malformed or missing input. Fields holds the JSON
// names of the offending fields, in request order.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Validation returns a ValidationError with a plain message and no field list.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

// ValidationFields returns a ValidationError naming the offending fields.
func ValidationFields(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
