package models

import "errors"

// Error kinds shared by services and mapped to HTTP statuses by the handlers.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream failure")
)

// Error pairs an error kind with the message returned to API clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NewNotFoundError reports an unknown item or product.
func NewNotFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// NewUpstreamError reports a failed call to an external service.
func NewUpstreamError(message string, err error) error {
	return &Error{Kind: ErrUpstream, Message: message, Err: err}
}
