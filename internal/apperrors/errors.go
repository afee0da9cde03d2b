// Package apperrors defines the error kinds shared across TaskCore, its
// workers, and the agent. Every domain error is one of these kinds so that
// handlers and bus consumers can map behavior by errors.Is/As rather than by
// string matching.
package apperrors

import "errors"

// Kind tags an error with one of the handling policies callers rely on.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindUpstreamTransient Kind = "upstream_transient"
	KindUpstreamPermanent Kind = "upstream_permanent"
	KindDeadlineExceeded  Kind = "deadline_exceeded"
)

// AppError is a wrapped, kind-tagged error value.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func new_(k Kind, msg string, err error) *AppError {
	return &AppError{Kind: k, Message: msg, Err: err}
}

func Validation(msg string) error { return new_(KindValidation, msg, nil) }

func Unauthorized() error { return new_(KindUnauthorized, "invalid credentials", nil) }

func NotFound() error { return new_(KindNotFound, "not found", nil) }

func Conflict() error { return new_(KindConflict, "conflict, retry", nil) }

func UpstreamTransient(err error) error {
	return new_(KindUpstreamTransient, "upstream temporarily unavailable", err)
}

func UpstreamPermanent(err error) error {
	return new_(KindUpstreamPermanent, "upstream rejected request", err)
}

func DeadlineExceeded() error { return new_(KindDeadlineExceeded, "deadline exceeded", nil) }

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == k
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}
