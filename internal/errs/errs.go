package errs

import "fmt"

// Kind classifies an error so callers can branch without inspecting the
// underlying device/network error chain.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConnection    Kind = "connection"
	KindReadTransient Kind = "read_transient"
	KindDelivery      Kind = "delivery"
)

// Error is a tagged error carrying a kind, a human-readable message and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or an empty Kind for untagged errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a tagged error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Validation creates a validation error for bad caller input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound creates a not-found error for a missing record.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Connection wraps a device open/configure failure.
func Connection(msg string, err error) *Error {
	return &Error{Kind: KindConnection, Message: msg, Err: err}
}

// ReadTransient wraps a per-read device hiccup the sampler survives.
func ReadTransient(msg string, err error) *Error {
	return &Error{Kind: KindReadTransient, Message: msg, Err: err}
}

// Delivery wraps an external-sender failure.
func Delivery(msg string, err error) *Error {
	return &Error{Kind: KindDelivery, Message: msg, Err: err}
}
