package errors

import (
	"errors"
	"fmt"
)

// AppError is the application error type shared by every layer.
// Design notes:
// 1. Code classifies the failure; callers branch on the code range, never on message text
// 2. Message is the human-readable reason shown to the user
// 3. Field names the offending input for validation failures
// 4. Err is the underlying cause, kept for logs and errors.Is/As
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap supports errors.Is and errors.As on the cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same code, so a wrapped or re-created
// error still satisfies errors.Is against the predefined values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an AppError without a cause.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Invalid creates a validation error for one input field.
func Invalid(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: message,
		Field:   field,
	}
}

// Wrap wraps a system error as an internal error.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps a system error under an explicit code,
// e.g. a database failure as ErrCodeDatabaseError.
func WrapWithCode(code int, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// Error codes
// =========================================
// Ranges:
// - 404xx: referenced record or file does not exist
// - 409xx: malformed or out-of-range input
// - 500xx: storage, filesystem and other system failures

const (
	ErrCodeInternal      = 50000 // internal error
	ErrCodeDatabaseError = 50001 // embedded store failure
	ErrCodeFileError     = 50002 // filesystem failure
	ErrCodeBackupFailed  = 50003 // best-effort backup failed

	ErrCodeNotFound     = 40400 // generic not found
	ErrCodeBookNotFound = 40402 // book id absent
	ErrCodeFileNotFound = 40404 // data file or CSV absent

	ErrCodeInvalidParams = 40900 // validation failure
	ErrCodeInvalidCSV    = 40902 // CSV structure cannot be mapped
)

// =========================================
// Predefined errors
// =========================================

var (
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrFileError     = New(ErrCodeFileError, "file system error")
	ErrBackupFailed  = New(ErrCodeBackupFailed, "backup failed")

	ErrBookNotFound = New(ErrCodeBookNotFound, "book not found")
	ErrFileNotFound = New(ErrCodeFileNotFound, "file not found")

	ErrInvalidCSV = New(ErrCodeInvalidCSV, "invalid CSV file")
)

// =========================================
// Helpers
// =========================================

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError, wrapping anything else as internal.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}

// IsValidation reports a 409xx error.
func IsValidation(err error) bool {
	return inRange(err, 40900)
}

// IsNotFound reports a 404xx error.
func IsNotFound(err error) bool {
	return inRange(err, 40400)
}

// IsStorage reports a store or filesystem failure.
func IsStorage(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == ErrCodeDatabaseError || appErr.Code == ErrCodeFileError
}

func inRange(err error, base int) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code/100 == base/100
}
