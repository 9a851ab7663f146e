// Package errors provides structured errors for netposter.
//
// An [Error] pairs a machine-readable [Code] with a message and an optional
// cause. The code decides how a failure is handled: invalid settings, a
// malformed graph or an unwritable output path abort a render, while
// recoverable input problems never become errors at all (they are logged
// and the renderer falls back).
//
//	if err := s.Validate(); err != nil {
//	    return err // errors.Is(err, errors.ErrCodeInvalidSettings)
//	}
//	return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
//
// The code is not part of the message; use [GetCode] or [ExitCode].
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeIO              Code = "IO_FAILURE"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
	ErrCodeUnsupported     Code = "UNSUPPORTED"
)

// Error is a coded error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error around cause. An empty code keeps the code of
// cause, so callers can add context without reclassifying.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	if code == "" {
		code = GetCode(cause)
	}
	if code == "" {
		code = ErrCodeInternal
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Process exit codes, following sysexits.h.
const (
	ExitFailure  = 1
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
	ExitIOErr    = 74
)

// ExitCode maps err to a process exit status. Nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case ErrCodeInvalidSettings, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeUnsupported:
		return ExitUsage
	case ErrCodeInvalidInput, ErrCodeInvalidGraph:
		return ExitDataErr
	case ErrCodeFileNotFound:
		return ExitNoInput
	case ErrCodeIO:
		return ExitIOErr
	case ErrCodeInternal:
		return ExitSoftware
	}
	return ExitFailure
}
