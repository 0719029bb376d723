package ai

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific AI service error types.
type ErrorCode string

const (
	ErrServiceUnavailable ErrorCode = "AI_SERVICE_UNAVAILABLE"
	ErrServiceTimeout     ErrorCode = "AI_SERVICE_TIMEOUT"
	ErrRateLimited        ErrorCode = "AI_RATE_LIMITED"
	ErrInvalidDocument    ErrorCode = "INVALID_DOCUMENT"
	ErrBadResponse        ErrorCode = "BAD_RESPONSE"
)

// ServiceError is a structured error for AI collaborator failures.
type ServiceError struct {
	Code      ErrorCode
	Message   string
	Operation string // e.g. "recommend" or "analyze-receipt"
	Retryable bool
	Cause     error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is worth retrying. Errors that are not a
// ServiceError are assumed transient.
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return true
}
