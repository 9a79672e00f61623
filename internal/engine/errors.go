package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes failures of the engine machinery.
type RuntimeErrorCode string

const (
	// ErrCodeStopped: Run has exited and no further actions will be applied.
	ErrCodeStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodePoolSaturated: the worker pool refused a job in reject mode.
	ErrCodePoolSaturated RuntimeErrorCode = "POOL_SATURATED"
)

// RuntimeError is a failure of the engine itself. Domain failures are not
// RuntimeErrors; they are stored in state as *ir.Error values.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == code
}

// IsStopped reports whether err is or wraps an engine-stopped error.
func IsStopped(err error) bool { return hasCode(err, ErrCodeStopped) }

// IsPoolSaturated reports whether err is or wraps a pool-saturated error.
func IsPoolSaturated(err error) bool { return hasCode(err, ErrCodePoolSaturated) }

// NewStoppedError is returned to waiters once Run has exited.
func NewStoppedError() *RuntimeError {
	return &RuntimeError{Code: ErrCodeStopped, Message: "engine stopped before the operation completed"}
}

// NewPoolSaturatedError reports a job refused by a pool of the given size.
func NewPoolSaturatedError(size int64) *RuntimeError {
	return &RuntimeError{Code: ErrCodePoolSaturated, Message: fmt.Sprintf("worker pool at capacity (%d)", size)}
}
