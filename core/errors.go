package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UnavailableError marks the DATA-UNAVAILABLE state: a primary collection could not be loaded
// and no interaction is possible until a successful reload.
type UnavailableError struct {
	Err error
}

func NewUnavailableError(err error) error {
	return &UnavailableError{Err: err}
}

func (err *UnavailableError) Error() string {
	if err.Err == nil {
		return "data unavailable"
	}
	return "data unavailable: " + err.Err.Error()
}

func (err *UnavailableError) Unwrap() error { return err.Err }

func IsUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*UnavailableError)
	return ok
}
