// Package apperr defines the coded errors the ledger and session layers
// return. Handlers are the only place these become HTTP responses.
//
//	if errors.Is(err, apperr.ErrValidation) { ... }
//	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeValidation   Code = "VALIDATION"
	CodeStoreFailure Code = "STORE_FAILURE"
)

// HTTPStatus maps a code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized access"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrStoreFailure = &Error{Code: CodeStoreFailure, Message: "store failure"}
)

func Unauthorized(cause error) *Error {
	return &Error{Code: CodeUnauthorized, Message: "unauthorized access", cause: cause}
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a database error raised while performing op.
func Store(op string, err error) *Error {
	return &Error{Code: CodeStoreFailure, Message: op, cause: err}
}

// HTTPStatus returns the status for err, 500 for anything uncoded.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}
