// Package apperror defines the error kinds surfaced by the cart and order core.
package apperror

import (
	"context"
	"errors"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindInvalidQuantity   Kind = "INVALID_QUANTITY"
	KindInvalidSplitCount Kind = "INVALID_SPLIT_COUNT"
	KindEmptyCart         Kind = "EMPTY_CART"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindForbidden         Kind = "FORBIDDEN"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindNotFound          Kind = "NOT_FOUND"
	KindTransientIO       Kind = "TRANSIENT_IO"
	KindInvalidInput      Kind = "INVALID_INPUT"
)

// Error carries a kind, a message safe to show callers, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidQuantity   = New(KindInvalidQuantity, "invalid quantity")
	ErrInvalidSplitCount = New(KindInvalidSplitCount, "invalid split count")
	ErrEmptyCart         = New(KindEmptyCart, "cart is empty")
	ErrInvalidTransition = New(KindInvalidTransition, "invalid status transition")
	ErrForbidden         = New(KindForbidden, "forbidden")
	ErrUnauthorized      = New(KindUnauthorized, "unauthorized")
	ErrNotFound          = New(KindNotFound, "not found")
	ErrTransientIO       = New(KindTransientIO, "temporarily unavailable")
	ErrInvalidInput      = New(KindInvalidInput, "invalid input")
)

// KindOf returns the kind of err. Deadline and cancellation errors count as
// TransientIO; anything unrecognised is TransientIO as well.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransientIO
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Transient wraps a store or network failure. Already-classified errors pass through.
func Transient(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTransientIO, message+" timed out", err)
	}
	return Wrap(KindTransientIO, message, err)
}

// Retryable reports whether a caller may safely retry.
func Retryable(err error) bool {
	return IsKind(err, KindTransientIO)
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidQuantity, KindInvalidSplitCount, KindEmptyCart, KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidTransition:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTransientIO:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
