// Package errors is the application error taxonomy shared by stores and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable category reported to API clients.
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeConflict    ErrorCode = "conflict"
	ErrCodeValidation  ErrorCode = "validation"
	ErrCodeForeignKey  ErrorCode = "foreign_key"
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeCanceled    ErrorCode = "canceled"
	ErrCodeUnavailable ErrorCode = "database_unavailable"
	ErrCodeUpstream    ErrorCode = "document_store_error"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeConflict:    http.StatusConflict,
	ErrCodeForeignKey:  http.StatusConflict,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeTimeout:     http.StatusGatewayTimeout,
	ErrCodeCanceled:    http.StatusRequestTimeout,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:    http.StatusBadGateway,
}

// AppError carries a code and a client-safe message. Cause stays available to
// errors.Is and errors.As but is only shown through Error().
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input for validation and conflict errors.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New builds an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NotFound(message string) *AppError   { return New(ErrCodeNotFound, message) }
func Validation(message string) *AppError { return New(ErrCodeValidation, message) }

// ValidationField reports invalid input for a named field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Unavailable reports a backing service that is not configured for this deployment.
func Unavailable(message string) *AppError { return New(ErrCodeUnavailable, message) }

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// GetCode returns the code of the first AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Has reports whether err's chain holds an AppError with code.
func Has(err error, code ErrorCode) bool {
	return code != "" && GetCode(err) == code
}

// GetField returns the offending field, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// HTTPStatus maps err to a response status; anything unclassified is a 500.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
