package models

import (
	"fmt"
	"net/http"
)

// ErrorCode is a string type for consistent error codes.
type ErrorCode string

// Predefined error codes for common API errors.
const (
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeInvalidFormat       ErrorCode = "invalid_format"
)

// APIError is an error surfaced to HTTP clients. Only the message goes on the
// wire, as {"error": message}; the code is kept for logs.
type APIError struct {
	Code       ErrorCode `json:"-"`
	Message    string    `json:"error"`
	StatusCode int       `json:"-"`
}

// Error makes APIError implement the error interface.
func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAPIError is a constructor for APIError.
func NewAPIError(code ErrorCode, message string, statusCode int) APIError {
	return APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// ErrDeviceNotFound is returned when no reading exists for a device id.
var ErrDeviceNotFound = NewAPIError(ErrorCodeNotFound, "Device not found", http.StatusNotFound)
