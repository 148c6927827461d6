// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown errors and broken engine invariants
//   - Validation errors (100-199): Invalid settings, ranges and dates
//   - Data/Resource errors (200-299): Candle lookups and result persistence
//   - Indicator errors (300-399): Indicator adapter lookup and calculation
//   - Backtest errors (600-699): Sweep configuration and execution
//   - Market data errors (700-799): Candle download and storage
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidStopLoss, "stop loss must be negative")
//
//	err := errors.Wrapf(errors.ErrCodeQueryFailed, cause, "failed to load candles for %s", date)
//
//	if errors.HasCode(err, errors.ErrCodeUnsupportedEntryMode) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned by indicator adapters when a day holds fewer
// candles than the indicator lookback needs.
type InsufficientDataError struct {
	Indicator string
	Required  int
	Actual    int
}

func NewInsufficientDataError(indicator string, required, actual int) *InsufficientDataError {
	return &InsufficientDataError{Indicator: indicator, Required: required, Actual: actual}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d candles, got %d", e.Indicator, e.Required, e.Actual)
}

// IsInsufficientDataError reports whether err or anything it wraps is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
