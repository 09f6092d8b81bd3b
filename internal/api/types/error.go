package types

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error represents error information in API responses
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// APIError pairs a response body with the HTTP status it maps to.
//
// The taxonomy follows the system error design: validation → 400,
// authentication → 401, authorization → 403, not found → 404,
// dependency failure → 503, everything else → 500. Dependency
// failures are never retried inside a single request; the caller
// retries.
type APIError struct {
	Status int
	Body   Error
	cause  error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return e.Body.Message + ": " + e.cause.Error()
	}
	return e.Body.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.cause
}

// ValidationError creates a 400 error for invalid input.
func ValidationError(details string) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Body:   Error{Code: "VALIDATION_ERROR", Message: "Invalid input data", Details: details},
	}
}

// AuthenticationError creates a 401 error for missing/invalid credentials.
func AuthenticationError(details string) *APIError {
	return &APIError{
		Status: http.StatusUnauthorized,
		Body:   Error{Code: "AUTHENTICATION_ERROR", Message: "Authentication failed", Details: details},
	}
}

// AuthorizationError creates a 403 error for insufficient privileges.
func AuthorizationError(details string) *APIError {
	return &APIError{
		Status: http.StatusForbidden,
		Body:   Error{Code: "AUTHORIZATION_ERROR", Message: "Access denied", Details: details},
	}
}

// NotFoundError creates a 404 error for an unknown resource.
func NotFoundError(resource string) *APIError {
	return &APIError{
		Status: http.StatusNotFound,
		Body:   Error{Code: "NOT_FOUND", Message: "Resource not found", Details: resource + " not found"},
	}
}

// DependencyError creates a 503 error for an unreachable store or cache.
func DependencyError(details string, cause error) *APIError {
	return &APIError{
		Status: http.StatusServiceUnavailable,
		Body:   Error{Code: "DEPENDENCY_ERROR", Message: "Dependency unavailable", Details: details},
		cause:  cause,
	}
}

// InternalError creates a 500 error for unexpected failures.
func InternalError(details string, cause error) *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Body:   Error{Code: "INTERNAL_ERROR", Message: "Internal server error", Details: details},
		cause:  cause,
	}
}

// AbortWithError writes the error response and aborts the request.
// Server-side causes (5xx) are logged with full context here, once.
func AbortWithError(c *gin.Context, err *APIError) {
	if err.Status >= http.StatusInternalServerError {
		log.Error().
			Err(err.cause).
			Int("status", err.Status).
			Str("code", err.Body.Code).
			Str("path", c.Request.URL.Path).
			Msg(err.Body.Message)
	}
	c.AbortWithStatusJSON(err.Status, Response{Success: false, Error: &err.Body})
}
