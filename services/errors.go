package services

import (
	"errors"
	"fmt"
)

// Kind classifies service failures so callers can map them to responses
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindNotFound     Kind = "not_found"
	KindTypeMismatch Kind = "type_mismatch"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindStorage      Kind = "storage"
)

// Sentinels for errors.Is on a Kind
var (
	ErrMalformed    = &Error{Kind: KindMalformed}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrTypeMismatch = &Error{Kind: KindTypeMismatch}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrStorage      = &Error{Kind: KindStorage}
)

// Error is a structured service failure. Field names the offending input
// when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func malformed(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformed, Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: fmt.Sprintf(format, args...)}
}

func typeMismatch(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTypeMismatch, Field: field, Message: fmt.Sprintf(format, args...)}
}

func conflict(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// asServiceError passes structured errors through and wraps everything else
// as a storage failure.
func asServiceError(message string, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return storage(message, err)
}
