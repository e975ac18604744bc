package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
	ErrTimeout        ErrorCode = "TIMEOUT"

	// Job-pipeline error classes (spec.md §7).
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"
	ErrDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	ErrTranscoderFailed      ErrorCode = "TRANSCODER_FAILED"
	ErrTranscoderUnavailable ErrorCode = "TRANSCODER_UNAVAILABLE"
	ErrTimedOut              ErrorCode = "TIMED_OUT"
	ErrAssetNotProduced      ErrorCode = "ASSET_NOT_PRODUCED"
	ErrStorageUnavailable    ErrorCode = "STORAGE_UNAVAILABLE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:              http.StatusNotFound,
	ErrUnauthorized:          http.StatusUnauthorized,
	ErrForbidden:             http.StatusForbidden,
	ErrConflict:              http.StatusConflict,
	ErrValidation:            http.StatusUnprocessableEntity,
	ErrBadRequest:            http.StatusBadRequest,
	ErrInternalError:         http.StatusInternalServerError,
	ErrAlreadyExists:         http.StatusConflict,
	ErrRateLimited:           http.StatusTooManyRequests,
	ErrServiceUnavail:        http.StatusServiceUnavailable,
	ErrTimeout:               http.StatusGatewayTimeout,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrDependencyUnavailable: http.StatusServiceUnavailable,
	ErrTranscoderFailed:      http.StatusInternalServerError,
	ErrTranscoderUnavailable: http.StatusServiceUnavailable,
	ErrTimedOut:              http.StatusGatewayTimeout,
	ErrAssetNotProduced:      http.StatusInternalServerError,
	ErrStorageUnavailable:    http.StatusServiceUnavailable,
}

// retryable marks which job-pipeline error classes the Worker Pool should
// retry (subject to attempts < max_attempts) versus fail immediately.
var retryable = map[ErrorCode]bool{
	ErrDependencyUnavailable: true,
	ErrTranscoderFailed:      true,
	ErrTimedOut:              true,
	ErrAssetNotProduced:      true,
	ErrInternalError:         true,
	ErrStorageUnavailable:    true,
}

// Retryable reports whether a job failing with this error class should be
// retried by the Worker Pool rather than immediately marked failed.
func (e ErrorCode) Retryable() bool {
	return retryable[e]
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
