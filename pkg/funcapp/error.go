package funcapp

import (
	"errors"
	"fmt"
)

// Error is returned when the service answers with a non-2xx status.
type Error struct {
	// Endpoint is the endpoint that failed.
	Endpoint Endpoint

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the response body as text.
	Body string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("funcapp: %s: %d - %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable returns true for server errors and rate limiting.
func (e *Error) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// AsError extracts *Error from an error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ParseError is returned when a successful response is not the expected
// JSON.
type ParseError struct {
	Endpoint Endpoint
	Body     string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("funcapp: %s: parse response: %v: %s", e.Endpoint, e.Err, e.Body)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errInvalidJSON = errors.New("invalid JSON")
