package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Detection errors: a malformed source fails only its own pairs
	ErrSourceInvalid ErrorCode = "SOURCE_INVALID"

	// Resolution errors: reported per conflict, batch continues
	ErrNoWinner            ErrorCode = "NO_WINNER"
	ErrStrategyUnsupported ErrorCode = "STRATEGY_UNSUPPORTED"
	ErrManualRequired      ErrorCode = "MANUAL_REQUIRED"
	ErrUnmergeable         ErrorCode = "UNMERGEABLE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"
	ErrEntryLocked ErrorCode = "ENTRY_LOCKED"

	// Transaction errors: fatal to the whole transaction
	ErrTxState    ErrorCode = "TX_STATE"
	ErrTxExecute  ErrorCode = "TX_EXECUTE"
	ErrTxRollback ErrorCode = "TX_ROLLBACK"
	ErrTxCommit   ErrorCode = "TX_COMMIT"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// ModfuseError represents a structured error with code and details
type ModfuseError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModfuseError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModfuseError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModfuseError) Is(target error) bool {
	var targetErr *ModfuseError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModfuseError with the given code and message
func New(code ErrorCode, message string) *ModfuseError {
	return &ModfuseError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModfuseError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModfuseError {
	return &ModfuseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModfuseError
func Wrap(err error, code ErrorCode, message string) *ModfuseError {
	if err == nil {
		return nil
	}
	return &ModfuseError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModfuseError {
	if err == nil {
		return nil
	}
	return &ModfuseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModfuseError) WithDetail(key string, value interface{}) *ModfuseError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mErr *ModfuseError
	if errors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// not a ModfuseError
func GetErrorCode(err error) ErrorCode {
	var mErr *ModfuseError
	if errors.As(err, &mErr) {
		return mErr.Code
	}
	return ErrUnknown
}
