package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes core errors.
type ErrorKind string

const (
	// KindGeneric is any failure without a more specific category.
	KindGeneric ErrorKind = "generic"

	// KindValidationFailed means an entry was rejected by validation, or
	// could not be validated at all (e.g. unknown entry type).
	KindValidationFailed ErrorKind = "validation_failed"

	// KindTimeout means a network request was not answered in time.
	KindTimeout ErrorKind = "timeout"

	// KindConfig means configuration was rejected.
	KindConfig ErrorKind = "config"
)

// Error is the error value stored in state and returned from awaited
// operations. It is compared structurally so every reader of a snapshot
// observes the same outcome.
type Error struct {
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches another *Error with the same kind and reason, so
// errors.Is(err, ir.ErrTimeout()) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// ErrorGeneric creates a generic error with the given reason.
func ErrorGeneric(reason string) *Error {
	return &Error{Kind: KindGeneric, Reason: reason}
}

// ErrorGenericf creates a generic error with a formatted reason.
func ErrorGenericf(format string, args ...any) *Error {
	return ErrorGeneric(fmt.Sprintf(format, args...))
}

// ValidationFailed creates a validation error carrying the rejection reason verbatim.
func ValidationFailed(reason string) *Error {
	return &Error{Kind: KindValidationFailed, Reason: reason}
}

// ErrTimeout creates a timeout error.
func ErrTimeout() *Error {
	return &Error{Kind: KindTimeout}
}

// ConfigError creates a configuration error.
func ConfigError(reason string) *Error {
	return &Error{Kind: KindConfig, Reason: reason}
}

// KindOf returns the kind of a core error, or "" if err is not one.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout returns true if err is (or wraps) a timeout error.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsValidationFailed returns true if err is (or wraps) a validation failure.
func IsValidationFailed(err error) bool {
	return KindOf(err) == KindValidationFailed
}

// AsError converts any error into a core *Error so it can be stored in state.
// Core errors pass through unchanged; anything else becomes generic.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrorGeneric(err.Error())
}

// ReasonOf returns the reason of a core error, or err.Error() for any
// other error.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
