package kernel

import "strings"

// InitializationError reports which dependencies Kernel.Validate found
// unregistered.
type InitializationError struct {
	Message string
	Missing []string
}

func (e *InitializationError) Error() string {
	return e.Message + ": " + strings.Join(e.Missing, ", ")
}

// NewInitializationError constructs an InitializationError.
func NewInitializationError(message string, missing []string) *InitializationError {
	return &InitializationError{Message: message, Missing: missing}
}
