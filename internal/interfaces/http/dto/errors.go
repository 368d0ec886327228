package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidSession is used when the auth service returns an incomplete session
	ErrCodeInvalidSession = "ERR_INVALID_SESSION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when a session is required but missing
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the session lacks the admin capability
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeProfileInvalid is used when the profile cookie cannot be verified
	ErrCodeProfileInvalid = "ERR_PROFILE_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeEmptyCart is used when checking out an empty cart
	ErrCodeEmptyCart = "ERR_EMPTY_CART"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Dependency error codes
const (
	// ErrCodeUpstream is used when the art API fails
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeStorage is used when durable storage is unavailable
	ErrCodeStorage = "ERR_STORAGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidSession: http.StatusBadGateway,

	// Auth errors
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeProfileInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Dependency errors
	ErrCodeUpstream: http.StatusBadGateway,
	ErrCodeStorage:  http.StatusServiceUnavailable,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to response codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":       ErrCodeNotFound,
	"INVALID_INPUT":   ErrCodeInvalidInput,
	"INVALID_STATE":   ErrCodeInvalidState,
	"INVALID_SESSION": ErrCodeInvalidSession,
	"UNAUTHORIZED":    ErrCodeUnauthorized,
	"FORBIDDEN":       ErrCodeForbidden,
	"EMPTY_CART":      ErrCodeEmptyCart,
	"UPSTREAM_ERROR":  ErrCodeUpstream,
	"STORAGE_FAILED":  ErrCodeStorage,
	"INTERNAL_ERROR":  ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the response format
// If the code is already in the response format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
