package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode  `json:"code"`
	Message string     `json:"message"`
	Field   string     `json:"field,omitempty"`
	Details string     `json:"details,omitempty"`
	Status  int        `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarshalJSON customizes JSON encoding
func (e *APIError) MarshalJSON() ([]byte, error) {
	type Alias APIError
	return json.Marshal(&struct {
		*Alias
	}{
		Alias: (*Alias)(e),
	})
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// Conflict creates a CONFLICT error
func Conflict(resource string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s already exists or is in an invalid state", resource),
		Status:  http.StatusConflict,
	}
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// AlreadyExists creates an ALREADY_EXISTS error
func AlreadyExists(resource string) *APIError {
	return &APIError{
		Code:    ErrAlreadyExists,
		Message: fmt.Sprintf("%s already exists", resource),
		Status:  http.StatusConflict,
	}
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &APIError{
		Code:    ErrRateLimited,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *APIError {
	return &APIError{
		Code:    ErrServiceUnavail,
		Message: fmt.Sprintf("%s is temporarily unavailable", service),
		Status:  http.StatusServiceUnavailable,
	}
}

// Timeout creates a TIMEOUT error
func Timeout(operation string) *APIError {
	return &APIError{
		Code:    ErrTimeout,
		Message: fmt.Sprintf("%s timed out", operation),
		Status:  http.StatusGatewayTimeout,
	}
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// Retryable reports whether the Worker Pool should retry the job that
// produced this error rather than marking it failed outright.
func (e *APIError) Retryable() bool {
	return e.Code.Retryable()
}

// InvalidRequestError creates an INVALID_REQUEST error (Planner/API validation).
func InvalidRequestError(field, message string) *APIError {
	return &APIError{
		Code:    ErrInvalidRequest,
		Message: message,
		Field:   field,
		Status:  http.StatusBadRequest,
	}
}

// DependencyUnavailable creates a DEPENDENCY_UNAVAILABLE error for a
// transcoder or storage backend that is down at job start.
func DependencyUnavailable(dependency string) *APIError {
	return &APIError{
		Code:    ErrDependencyUnavailable,
		Message: fmt.Sprintf("%s is unavailable", dependency),
		Status:  http.StatusServiceUnavailable,
	}
}

// TranscoderFailed creates a TRANSCODER_FAILED error carrying the child
// process's exit code and a truncated tail of its stderr output.
func TranscoderFailed(exitCode int, stderrTail string) *APIError {
	return &APIError{
		Code:    ErrTranscoderFailed,
		Message: fmt.Sprintf("transcoder exited with code %d", exitCode),
		Details: stderrTail,
		Status:  http.StatusInternalServerError,
	}
}

// TranscoderUnavailable creates a TRANSCODER_UNAVAILABLE error, surfaced by
// the Transcoder Gateway's probe when the binary cannot be found.
func TranscoderUnavailable(binary string) *APIError {
	return &APIError{
		Code:    ErrTranscoderUnavailable,
		Message: fmt.Sprintf("transcoder binary %q not found", binary),
		Status:  http.StatusServiceUnavailable,
	}
}

// TimedOut creates a TIMED_OUT error for a handler that exceeded its
// wall-clock budget.
func TimedOut(operation string) *APIError {
	return &APIError{
		Code:    ErrTimedOut,
		Message: fmt.Sprintf("%s exceeded its time budget", operation),
		Status:  http.StatusGatewayTimeout,
	}
}

// AssetNotProduced creates an ASSET_NOT_PRODUCED error for a pipeline stage
// whose output file is missing or zero-size.
func AssetNotProduced(stage string) *APIError {
	return &APIError{
		Code:    ErrAssetNotProduced,
		Message: fmt.Sprintf("stage %q produced no output", stage),
		Status:  http.StatusInternalServerError,
	}
}

// StorageUnavailableError creates a STORAGE_UNAVAILABLE error for a backend
// I/O failure in the Storage component.
func StorageUnavailableError(message string) *APIError {
	return &APIError{
		Code:    ErrStorageUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
	}
}
