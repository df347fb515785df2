// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures. Every public operation surfaces exactly
// one kind and aborts atomically; partial state is never observable.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindTransfer      Kind = "transfer"
	KindPayment       Kind = "payment"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
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

// Is makes two engine errors equal when kind and code match, so tests and
// callers can use errors.Is with a bare constructor value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...interface{}) *Error {
	return newError(KindValidation, code, format, args...)
}

func Authorization(code, format string, args ...interface{}) *Error {
	return newError(KindAuthorization, code, format, args...)
}

func State(code, format string, args ...interface{}) *Error {
	return newError(KindState, code, format, args...)
}

func Transfer(code string, err error) *Error {
	return &Error{Kind: KindTransfer, Code: code, Message: "asset transfer refused", Err: err}
}

func Payment(code, format string, args ...interface{}) *Error {
	return newError(KindPayment, code, format, args...)
}

// Internal marks an invariant violation inside the engine itself. These are
// never clamped or swallowed.
func Internal(code, format string, args ...interface{}) *Error {
	return newError(KindInternal, code, format, args...)
}

func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the kind of an engine error, or KindInternal for anything
// that escaped the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
