// Package apperr defines the error kinds shared by the services and the API layer.
//
// Services return errors built here (or wrapping them); handlers map the kind to a
// status code with errors.Is and never inspect the message text.
package apperr

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

type Error struct {
	kind    error
	Msg     string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{kind: ErrValidation, Msg: msg}
}

// ValidationWithDetails carries per-field information for the client.
func ValidationWithDetails(msg string, details interface{}) error {
	return &Error{kind: ErrValidation, Msg: msg, Details: details}
}

func NotFound(msg string) error {
	return &Error{kind: ErrNotFound, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{kind: ErrForbidden, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{kind: ErrConflict, Msg: msg}
}

func Internal(msg string, err error) error {
	return &Error{kind: ErrInternal, Msg: msg, Err: err}
}

// Kind returns the sentinel matching err, or ErrInternal when err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Message returns the message of the outermost *Error in the chain.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

// DetailsOf returns the details of the outermost *Error in the chain.
func DetailsOf(err error) interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
