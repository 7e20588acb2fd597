package domain

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeInvalid           Code = "invalid_argument"
	CodeInsufficientStock Code = "insufficient_stock"
	CodeConflict          Code = "conflict"
	CodeForbidden         Code = "forbidden"
	CodeUnauthorized      Code = "unauthorized"
	CodeExpired           Code = "expired"
)

// Error is the typed failure every service returns for expected outcomes.
// Anything that is not an *Error is a storage or programming fault.
type Error struct {
	Code    Code
	Message string

	// Set only for CodeInsufficientStock.
	Available int
	Requested int
}

func (e *Error) Error() string { return e.Message }

func NotFound(kind string, id any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", kind, id)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return &Error{Code: CodeInvalid, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(available, requested int) *Error {
	return &Error{
		Code:      CodeInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock: available %d, requested %d", available, requested),
		Available: available,
		Requested: requested,
	}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

func Expired(msg string) *Error { return &Error{Code: CodeExpired, Message: msg} }

// ErrorCode reports the Code carried by err, or "" when err is not a domain error.
func ErrorCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsCode(err error, code Code) bool { return err != nil && ErrorCode(err) == code }
