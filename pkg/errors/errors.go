// Package errors provides structured errors with stable codes so the CLI
// can tell a connectivity failure from a sync failure from a failed
// provisioning step without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Deployment gate errors
	ErrConnectivity ErrorCode = "CONNECTIVITY"
	ErrSync         ErrorCode = "SYNC"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigMissing ErrorCode = "CONFIG_MISSING"

	// Remote execution and provisioning errors
	ErrRemoteExec ErrorCode = "REMOTE_EXEC"
	ErrStepFailed ErrorCode = "STEP_FAILED"

	// Service lifecycle errors
	ErrServiceQuery  ErrorCode = "SERVICE_QUERY"
	ErrServiceAction ErrorCode = "SERVICE_ACTION"
)

// FramectlError represents a structured error with code and details
type FramectlError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *FramectlError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FramectlError) Unwrap() error {
	return e.Wrapped
}

// Is matches on error code so sentinel comparisons survive wrapping
func (e *FramectlError) Is(target error) bool {
	var targetErr *FramectlError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new FramectlError with the given code and message
func New(code ErrorCode, message string) *FramectlError {
	return &FramectlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new FramectlError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *FramectlError {
	return &FramectlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a FramectlError
func Wrap(err error, code ErrorCode, message string) *FramectlError {
	if err == nil {
		return nil
	}
	return &FramectlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *FramectlError {
	if err == nil {
		return nil
	}
	return &FramectlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *FramectlError) WithDetail(key string, value interface{}) *FramectlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ferr *FramectlError
	if errors.As(err, &ferr) {
		return ferr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if the
// error does not carry one
func GetErrorCode(err error) ErrorCode {
	var ferr *FramectlError
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return ErrUnknown
}
