package shared

import (
	"errors"
	"fmt"
)

// Error codes. Every failure surfaced by the domain and application layers
// carries one of these so callers can branch on the kind, not the message.
const (
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeBadRequest          = "BAD_REQUEST"
	CodeStoreError          = "STORE_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAlreadyExists       = "ALREADY_EXISTS"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause (StoreError wraps the driver error)
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so errors.Is(err, ErrNotFound) works for
// any NOT_FOUND error regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthenticated     = NewDomainError(CodeUnauthenticated, "Authentication required")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Operation not allowed in current state")
	ErrBadRequest          = NewDomainError(CodeBadRequest, "Invalid input provided")
	ErrStore               = NewDomainError(CodeStoreError, "An unexpected storage error occurred")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidCredentials  = NewDomainError(CodeInvalidCredentials, "Invalid email or password")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
)

// NewNotFoundError reports a missing entity of the given kind
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

// NewBadRequestError reports an invalid or missing payload field
func NewBadRequestError(message string) *DomainError {
	return NewDomainError(CodeBadRequest, message)
}

// NewInvalidTransitionError reports an operation blocked by the current status
func NewInvalidTransitionError(operation, currentStatus string) *DomainError {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("Cannot %s a request with status '%s'", operation, currentStatus))
}

// NewStoreError wraps a persistence failure. The message stays opaque; the
// cause is reachable with errors.Unwrap for logging.
func NewStoreError(cause error) *DomainError {
	return &DomainError{
		Code:    CodeStoreError,
		Message: ErrStore.Message,
		cause:   cause,
	}
}

// CodeOf returns the domain error code of err, or "" when err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
