package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors.
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidTaskID    = errors.New("invalid task ID")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAuthenticated = errors.New("not logged in (run 'tasker login' first)")
	ErrCancelled        = errors.New("cancelled")
	ErrConfigExists     = errors.New("config file already exists")
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoTasksInFile    = errors.New("no tasks found in file")
	ErrMissingTask      = errors.New("response did not contain a task")
)

// NetworkErrorMessage is the AuthError message used when the server could not be reached.
const NetworkErrorMessage = "network error"

// ValidationError reports input rejected locally, before any network call.
type ValidationError struct {
	Err   error  // Underlying sentinel (e.g. ErrEmptyTitle)
	Field string // Offending field name
	Value string // Offending value (optional)
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError reports a non-2xx response from the server.
type TransportError struct {
	Message    string // Server-supplied message (may be empty)
	StatusCode int    // HTTP status code
}

func (e *TransportError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized returns true if the server rejected the credential.
// The server's token layer answers 422 for malformed tokens.
func (e *TransportError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusUnprocessableEntity
}

// NetworkError reports that no response was received (connectivity or timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", NetworkErrorMessage, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError is the typed failure returned by login and registration.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// AsTransportError returns the TransportError wrapped by err, if any.
func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
