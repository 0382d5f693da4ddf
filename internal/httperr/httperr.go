// Package httperr carries the error taxonomy shared by all controllers:
// a small set of kinds with a deterministic HTTP status mapping.
package httperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota + 1 // malformed or constraint-violating input
	NotFound                   // referenced id does not exist
	Unauthorized               // missing/invalid/expired token, bad credentials
	Conflict                   // uniqueness violation (duplicate email)
	Internal                   // unexpected storage failure
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, logged server-side, never serialized
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on kind against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: Validation}
	ErrNotFound     = &Error{Kind: NotFound}
	ErrUnauthorized = &Error{Kind: Unauthorized}
	ErrConflict     = &Error{Kind: Conflict}
	ErrInternal     = &Error{Kind: Internal}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Status maps an error to its transport status code. Anything that is not
// an *Error counts as an internal failure.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
