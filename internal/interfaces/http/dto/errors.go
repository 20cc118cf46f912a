package dto

import (
	"net/http"

	"github.com/procura/backend/internal/domain/shared"
)

// Error codes on the wire are the domain codes with an "ERR_" prefix
const errCodePrefix = "ERR_"

// Domain error codes as rendered in responses
const (
	ErrCodeUnauthenticated     = errCodePrefix + shared.CodeUnauthenticated
	ErrCodeForbidden           = errCodePrefix + shared.CodeForbidden
	ErrCodeNotFound            = errCodePrefix + shared.CodeNotFound
	ErrCodeUnauthorized        = errCodePrefix + shared.CodeUnauthorized
	ErrCodeInvalidTransition   = errCodePrefix + shared.CodeInvalidTransition
	ErrCodeBadRequest          = errCodePrefix + shared.CodeBadRequest
	ErrCodeStoreError          = errCodePrefix + shared.CodeStoreError
	ErrCodeConcurrencyConflict = errCodePrefix + shared.CodeConcurrencyConflict
	ErrCodeInvalidCredentials  = errCodePrefix + shared.CodeInvalidCredentials
	ErrCodeAlreadyExists       = errCodePrefix + shared.CodeAlreadyExists
)

// Transport-only error codes
const (
	// ErrCodeValidation is used when a body or query fails its schema
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRateLimited is used when a client exceeds its request budget
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the body exceeds the size limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeInternal is used for errors that are not domain errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when a dependency such as the database is down
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnauthenticated:     http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeUnauthorized:        http.StatusForbidden,
	ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeStoreError:          http.StatusInternalServerError,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidCredentials:  http.StatusUnauthorized,
	ErrCodeAlreadyExists:       http.StatusConflict,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromDomainCode converts a domain error code to its wire form
func FromDomainCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	return errCodePrefix + code
}
