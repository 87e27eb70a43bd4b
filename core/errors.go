package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports invalid input. It is rendered as a 400 response:
// a map of Fields when present, Err's message otherwise.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fe := range err.Fields {
		msgs = append(msgs, fe.Field+": "+fe.Error)
	}
	return strings.Join(msgs, "; ")
}

func (err ValidationError) Unwrap() error { return err.Err }

// IsValidationError reports whether err's cause is a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
