package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable error code that handlers map to HTTP statuses.
type Code string

const (
	CodeInvalid      Code = "invalid"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal"
)

type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(message string) *AppError  { return New(CodeNotFound, message) }
func Forbidden(message string) *AppError { return New(CodeForbidden, message) }
func Conflict(message string) *AppError  { return New(CodeConflict, message) }
func Invalid(message string) *AppError   { return New(CodeInvalid, message) }

// Internal wraps an unexpected error, usually from the database.
func Internal(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// MessageOf returns the user-facing message; internal errors never leak details.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Code != CodeInternal {
		return ae.Message
	}
	return "Internal server error"
}
