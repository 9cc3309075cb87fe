package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the calling layer can pick an HTTP status and localized text.
type Kind string

const (
	KindInvalidInput             Kind = "invalid_input"
	KindNotFound                 Kind = "not_found"
	KindDuplicatePeriod          Kind = "duplicate_period"
	KindIllegalTransition        Kind = "illegal_transition"
	KindPeriodClosed             Kind = "period_closed"
	KindCalculationInconsistency Kind = "calculation_inconsistency"
	KindInternal                 Kind = "internal"
)

// Error carries a structured kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kinded error. Package-level sentinels are built with New.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. errors.Is(result, err) keeps working.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Detail returns a new error with the sentinel's kind and a more specific message.
// errors.Is(result, sentinel) holds.
func Detail(sentinel *Error, format string, args ...any) *Error {
	return &Error{Kind: sentinel.Kind, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// KindOf returns the kind of the outermost kinded error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
