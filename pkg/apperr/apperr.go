// Package apperr categorizes the error taxonomy of spec section 7. Warren
// itself has no dedicated error-types package — it wraps with
// fmt.Errorf("...: %w", err) throughout — so this package keeps that same
// wrapping idiom and only adds a Kind so callers (mainly the CLI layer) can
// branch on category without string-matching messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error per spec section 7.
type Kind string

const (
	NotFound               Kind = "not_found"
	AlreadyExists          Kind = "already_exists"
	InvariantViolation     Kind = "invariant_violation"
	CompatibilityViolation Kind = "compatibility_violation"
	OperationFailed        Kind = "operation_failed"
	RollbackFailed         Kind = "rollback_failed"
	PersistenceError       Kind = "persistence_error"
	LockContended          Kind = "lock_contended"
)

// Error is a categorized, wrappable error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// do errors.Is(err, apperr.New(apperr.NotFound, "")) — more commonly callers
// use errors.As and inspect .Kind directly.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error of the given kind, wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
