package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the gopipe library

var (
	// ErrAllocation indicates that the memory pool could not satisfy a
	// block request. The pipe is not corrupted; the operation may be
	// attempted again once memory is released elsewhere.
	ErrAllocation = errors.New("memory pool exhausted")

	// ErrInvalidOperation indicates a usage contract violation, such as a
	// second pending read or advancing past unread bytes. It signals a
	// caller bug and is never retried internally.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCompleted indicates that an operation was attempted after both
	// sides of the pipe completed.
	ErrCompleted = errors.New("pipe is completed")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrPoolClosed indicates that a block was requested from a closed pool.
	ErrPoolClosed = errors.New("pool is closed")
)

// IsTemporary returns true if the error indicates a condition that may
// clear on its own, leaving the pipe usable (e.g. allocation pressure)
func IsTemporary(err error) bool {
	return errors.Is(err, ErrAllocation)
}

// IsContractViolation returns true if the error indicates a caller bug
// rather than a runtime condition
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrInvalidConfiguration)
}

// IsTerminal returns true if the error indicates the pipe or resource is
// permanently unusable
func IsTerminal(err error) bool {
	return errors.Is(err, ErrCompleted) || errors.Is(err, ErrPoolClosed)
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  any
	Reason string
	Hint   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap makes ValidationError match ErrInvalidConfiguration via errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a ValidationError for the given module and field.
func NewValidationError(module, field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// OperationError wraps a failure of a named operation with its module for
// context. The cause is reachable through errors.Is/errors.As.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewOperationError creates an OperationError wrapping cause.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches extra context and returns the same error for chaining.
func (e *OperationError) WithContext(ctx string) *OperationError {
	e.Context = ctx
	return e
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
