// Package apperr carries a stable error kind alongside the message so the
// HTTP layer can map failures to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindValidation          Kind = "validation"
	KindOutOfStock          Kind = "out_of_stock"
	KindEmptyCart           Kind = "empty_cart"
	KindInvalidTransition   Kind = "invalid_transition"
	KindNotCancellable      Kind = "not_cancellable"
	KindPaymentVerification Kind = "payment_verification_failed"
	KindConflict            Kind = "conflict"
	KindForbidden           Kind = "forbidden"
	KindInternal            Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }
