package dataapi

import (
	"errors"
	"fmt"
)

var (
	// ErrBaseURLRequired is returned when a client is built without a base URL.
	ErrBaseURLRequired = errors.New("base URL is required")
	// ErrInvalidVersion is returned when an API version cannot be parsed.
	ErrInvalidVersion = errors.New("invalid API version")

	// ErrUnknownOperation is returned when no catalog entry matches an operation.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrMissingParameter is returned when a route placeholder has no value.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrUnsupportedVerb is returned for catalog entries with an unknown HTTP verb.
	ErrUnsupportedVerb = errors.New("unsupported HTTP verb")

	// ErrTransport wraps network and HTTP layer failures.
	ErrTransport = errors.New("transport error")
	// ErrResponse is matched by every *ResponseError.
	ErrResponse = errors.New("response error")
	// ErrMalformedResponse is returned when a response body is not valid JSON.
	ErrMalformedResponse = errors.New("malformed response body")
)

// ResponseError represents a non-success or undecodable API response.
type ResponseError struct {
	StatusCode int
	Body       string
	Message    string
	Err        error
}

func (e *ResponseError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("API error %d: %v", e.StatusCode, e.Err)
	case e.Message != "":
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
	}
}

// Is reports whether target is ErrResponse.
func (e *ResponseError) Is(target error) bool {
	return target == ErrResponse
}

// Unwrap returns the underlying cause, if any.
func (e *ResponseError) Unwrap() error {
	return e.Err
}
