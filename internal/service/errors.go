package service

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamHTTP  = errors.New("upstream http error")
	ErrEmptyResponse = errors.New("empty upstream response")
	ErrParse         = errors.New("malformed upstream response")
	// ErrExtractionRetryExhausted is logged when the zero-item retry fails.
	// It never escapes the extraction; the result carries a warning instead.
	ErrExtractionRetryExhausted = errors.New("extraction retry exhausted")
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("conflict")
	ErrPersistence              = errors.New("persistence failed")
)

// WrapError tags err with an operation name and an error kind so callers
// can branch with errors.Is on the kind.
func WrapError(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// UserError carries a message that can be shown to the end user as is.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Kind }

func newUserError(kind error, message string) error {
	return &UserError{Kind: kind, Message: message}
}
