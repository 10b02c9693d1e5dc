package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body of every failed request
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// withDetails returns a copy of e carrying details
func (e *APIError) withDetails(details interface{}) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

var (
	ErrInvalidParameter  = NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")
	ErrNotFound          = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimitExceeded = NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer    = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// invalidParameter reports a query parameter that could not be used
func invalidParameter(name string, err error) *APIError {
	return ErrInvalidParameter.withDetails(map[string]string{
		"parameter": name,
		"reason":    err.Error(),
	})
}

// notFound reports a missing resource
func notFound(format string, args ...interface{}) *APIError {
	return ErrNotFound.withDetails(fmt.Sprintf(format, args...))
}

func writeError(w http.ResponseWriter, r *http.Request, err *APIError) {
	_ = render.Render(w, r, err)
}
