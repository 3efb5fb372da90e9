package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an operation failure
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindBackendError ErrorKind = "backend_error"
	KindCancelled    ErrorKind = "cancelled"
)

// OperationError is the failure half of a Result. Error returns the
// diagnostic message unchanged so it can be shown to the user as is.
type OperationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is matches another *OperationError of the same kind
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks by kind
var (
	ErrInvalidInput = &OperationError{Kind: KindInvalidInput}
	ErrBackend      = &OperationError{Kind: KindBackendError}
	ErrCancelled    = &OperationError{Kind: KindCancelled}
)

// InvalidInput creates an invalid input error
func InvalidInput(format string, args ...interface{}) *OperationError {
	return &OperationError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// BackendFailure wraps an error raised by the extraction backend
func BackendFailure(err error) *OperationError {
	msg := "unknown backend error"
	if err != nil {
		msg = err.Error()
	}
	return &OperationError{Kind: KindBackendError, Message: msg, Err: err}
}

// Cancelled creates a cancellation error
func Cancelled(reason string) *OperationError {
	return &OperationError{Kind: KindCancelled, Message: reason}
}

// AsOperationError converts any error to an *OperationError, treating
// unknown errors as backend failures.
func AsOperationError(err error) *OperationError {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	return BackendFailure(err)
}

// Unit is the value of operations that produce nothing on success
type Unit struct{}

// Result is the terminal outcome of an operation: a value or a failure.
type Result[T any] struct {
	value T
	err   *OperationError
}

// Success wraps a value
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps an error. A nil error is reported as an unknown backend failure.
func Failure[T any](err error) Result[T] {
	opErr := AsOperationError(err)
	if opErr == nil {
		opErr = BackendFailure(nil)
	}
	return Result[T]{err: opErr}
}

// OK reports whether the result is a success
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the success value (zero value on failure)
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure, or nil on success
func (r Result[T]) Err() *OperationError {
	return r.err
}

// Unwrap returns the value and error in Go's usual form
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
