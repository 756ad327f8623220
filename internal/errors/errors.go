package errors

import "fmt"

// ErrorCode represents a worklens error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrQuotaExceeded  ErrorCode = "QUOTA_EXCEEDED"  // 403
	ErrImportInvalid  ErrorCode = "IMPORT_INVALID"  // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session cannot be found.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("session not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for id collisions.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewQuotaExceeded creates a 403 error for a denied capture.
// The reason is the user-facing limit message, not an internal diagnostic.
func NewQuotaExceeded(reason string) *Error {
	return &Error{
		Code:    ErrQuotaExceeded,
		Status:  403,
		Message: reason,
	}
}

// NewImportInvalid creates a 422 error for a malformed import file.
// Import is all-or-nothing: a file that fails validation imports zero sessions.
func NewImportInvalid(msg string) *Error {
	return &Error{
		Code:    ErrImportInvalid,
		Status:  422,
		Message: msg,
	}
}

// NewCancelled creates a 499 error for a user-cancelled operation.
func NewCancelled(operation string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an Error with the given code.
func Is(err error, code ErrorCode) bool {
	if wErr, ok := err.(*Error); ok {
		return wErr.Code == code
	}
	return false
}
