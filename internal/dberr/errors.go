// Package dberr defines the error taxonomy shared across the storage and
// execution layers: invalid input, out-of-space, type mismatches, missing
// objects, I/O failures, and internal invariant violations.
package dberr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on it with errors.As.
type Kind int

const (
	// KindInvalidInput covers bad RIDs, bad slots, wrong page ids, unknown tables.
	KindInvalidInput Kind = iota
	// KindOutOfSpace means a tuple does not fit on a page, distinct from InvalidInput.
	KindOutOfSpace
	// KindTypeMismatch covers arithmetic/comparison on incompatible Fields,
	// overflow, and divide-by-zero.
	KindTypeMismatch
	// KindNotFound covers missing tables or pages.
	KindNotFound
	// KindIO covers disk-manager failures.
	KindIO
	// KindInternal covers invariant violations; callers may treat these as fatal.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindOutOfSpace:
		return "out_of_space"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the one error type used across relcore's storage and execution
// packages, instead of each package growing its own sentinel values.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, dberr.InvalidInput) style checks against a Kind
// sentinel created with New(kind, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an *Error of the given kind that wraps an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinels for errors.Is comparisons against a specific kind, ignoring message.
var (
	InvalidInput = New(KindInvalidInput, "")
	OutOfSpace   = New(KindOutOfSpace, "")
	TypeMismatch = New(KindTypeMismatch, "")
	NotFound     = New(KindNotFound, "")
	IOErr        = New(KindIO, "")
	Internal     = New(KindInternal, "")
)

// KindOf extracts the Kind from err, if it (or something it wraps) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
