package dataapi

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is a decoded API response.
type Response struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Body is the raw JSON body.
	Body []byte
	// TokenInvalidated is set when the server rejected the attached access
	// token and the client dropped it.
	TokenInvalidated bool
}

// Get returns the value at a gjson path, e.g. "error.code" or "items.#".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// String returns the raw JSON body.
func (r *Response) String() string {
	return string(r.Body)
}

// ErrorCode returns the "error.code" field, or 0 if the body carries no error.
func (r *Response) ErrorCode() int {
	return int(r.Get("error.code").Int())
}

// ErrorMessage returns the "error.message" field.
func (r *Response) ErrorMessage() string {
	return r.Get("error.message").String()
}

// IsUnauthorized reports whether the server refused the request's credentials.
func (r *Response) IsUnauthorized() bool {
	return r.StatusCode == http.StatusUnauthorized || r.ErrorCode() == http.StatusUnauthorized
}

func (r *Response) isSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
