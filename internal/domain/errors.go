package domain

import (
	"errors"
	"fmt"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is lets errors.Is match on Code.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	// ErrNotFound - the ticket, component or release does not exist
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "record not found",
	}

	// ErrBackendUnavailable - the tracking backend could not serve the request
	ErrBackendUnavailable = &DomainError{
		Code:    "BACKEND_UNAVAILABLE",
		Message: "tracking backend unavailable",
	}

	// ErrEmptyReply - a reply must carry some text
	ErrEmptyReply = &DomainError{
		Code:    "EMPTY_REPLY",
		Message: "reply text is empty",
	}

	// ErrUnknownStatus - the status code is not one the backend knows
	ErrUnknownStatus = &DomainError{
		Code:    "UNKNOWN_STATUS",
		Message: "unknown status code",
	}
)

// NewNotFoundError creates a NOT_FOUND error naming the missing record.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Code:    ErrNotFound.Code,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// BackendError is a non-2xx answer from the tracking backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("tracking backend returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 404 to ErrNotFound and everything else to ErrBackendUnavailable.
func (e *BackendError) Unwrap() error {
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return ErrBackendUnavailable
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
