package apperror

import (
	"errors"
	"fmt"
)

// ErrNoActiveSession signals that the user must upload a document before chatting.
var ErrNoActiveSession = errors.New("no active conversation found for this user, please upload a document first")

// ClientInputError covers request validation failures: unsupported format,
// empty file, empty query. Mapped to 400 at the HTTP boundary.
type ClientInputError struct {
	Message string
}

func (e *ClientInputError) Error() string {
	return e.Message
}

func NewClientInput(format string, args ...interface{}) *ClientInputError {
	return &ClientInputError{Message: fmt.Sprintf(format, args...)}
}

func IsClientInput(err error) bool {
	var ce *ClientInputError
	return errors.As(err, &ce)
}

// ProcessingError wraps any failure during ingestion after input validation
// has passed: extraction, chunking, embedding, index population.
type ProcessingError struct {
	Stage string
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("document processing failed at %s: %v", e.Stage, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func NewProcessing(stage string, cause error) *ProcessingError {
	return &ProcessingError{Stage: stage, Cause: cause}
}

// ModelInvocationError wraps a language model call failure. The responder does
// not retry; retry policy, if any, belongs to the provider client.
type ModelInvocationError struct {
	Cause error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed: %v", e.Cause)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Cause
}

func NewModelInvocation(cause error) *ModelInvocationError {
	return &ModelInvocationError{Cause: cause}
}

// SessionInitError signals the registry post-condition check failed after
// installing a session.
type SessionInitError struct {
	UserID string
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("failed to initialize conversation for user %s", e.UserID)
}
