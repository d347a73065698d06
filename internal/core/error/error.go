package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// ValidationMessage describes malformed tool or request arguments.
	ValidationMessage = "invalid arguments"
	// UpstreamMessage describes a failing external collaborator.
	UpstreamMessage = "upstream service failed"
	// ModelUnavailableMessage describes a failing language model backend.
	ModelUnavailableMessage = "language model unavailable"
	// StateCorruptionMessage describes persisted conversation state that
	// could not be decoded.
	StateCorruptionMessage = "conversation state corrupted"
)

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Validation wraps a malformed-arguments error. It is recovered locally and
// surfaced to the model as a tool error string, never as a turn failure.
func Validation(err error) *Error {
	return New(err, http.StatusBadRequest, ValidationMessage)
}

// Upstream wraps a failure of an external collaborator (commerce backend,
// search, knowledge base). Captured per tool call.
func Upstream(service string, err error) *Error {
	return New(err, http.StatusBadGateway, fmt.Sprintf("%s: %s", service, UpstreamMessage))
}

// Model wraps a language model backend failure. Fatal for the turn; no
// conversation state is committed.
func Model(err error) *Error {
	return New(err, http.StatusBadGateway, ModelUnavailableMessage)
}

// StateCorruption wraps a persisted-state decode failure. The conversation is
// treated as fresh; callers log this as a recoverable anomaly.
func StateCorruption(err error) *Error {
	return New(err, http.StatusInternalServerError, StateCorruptionMessage)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Message == ValidationMessage
}

// IsStateCorruption reports whether err is a state corruption error.
func IsStateCorruption(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Message == StateCorruptionMessage
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}
