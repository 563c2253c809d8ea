// Package apperr defines the closed set of error kinds the service layer
// surfaces to callers, so they can branch on kind without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Validation means caller-supplied input violated a field constraint.
	Validation Kind = iota
	// BusinessRule means the operation was well-formed but violated a
	// domain invariant.
	BusinessRule
	// NotFound means an operation required an entity that does not exist.
	NotFound
	// Storage wraps an error raised by the record store.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case BusinessRule:
		return "business_rule"
	case NotFound:
		return "not_found"
	case Storage:
		return "storage"
	}
	return "unknown"
}

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

func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(k Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
