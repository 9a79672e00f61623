package state

import "github.com/roach88/nucleus/internal/ir"

// Result is a terminal outcome stored in state: either Value or Err.
type Result[T any] struct {
	Value T
	Err   *ir.Error
}

// Ok creates a successful result.
func Ok[T any](v T) *Result[T] {
	return &Result[T]{Value: v}
}

// Fail creates a failed result.
func Fail[T any](err *ir.Error) *Result[T] {
	return &Result[T]{Err: err}
}

// Unwrap returns the value and, if the result failed, its error.
func (r *Result[T]) Unwrap() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

// copyWith returns a copy of m with key set to v. The input map is never written.
func copyWith[K comparable, V any](m map[K]V, key K, v V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, old := range m {
		out[k] = old
	}
	out[key] = v
	return out
}

// copyWithout returns a copy of m without key.
func copyWithout[K comparable, V any](m map[K]V, key K) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}
