package dataapi

import (
	"errors"
	"strings"
	"testing"
)

func TestResponseAccessors(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Body:       []byte(`{"error":{"code":401,"message":"Unauthorized"}}`),
	}

	if resp.ErrorCode() != 401 {
		t.Errorf("ErrorCode() = %d, want 401", resp.ErrorCode())
	}
	if resp.ErrorMessage() != "Unauthorized" {
		t.Errorf("ErrorMessage() = %q", resp.ErrorMessage())
	}
	if !resp.IsUnauthorized() {
		t.Error("IsUnauthorized() = false, want true")
	}

	ok := &Response{StatusCode: 200, Body: []byte(`{"items":[1,2,3]}`)}
	if ok.ErrorCode() != 0 || ok.IsUnauthorized() {
		t.Error("successful response reported an error")
	}
	if got := ok.Get("items.#").Int(); got != 3 {
		t.Errorf("Get(items.#) = %d, want 3", got)
	}
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ResponseError
		contains string
	}{
		{name: "message", err: &ResponseError{StatusCode: 404, Message: "Not found"}, contains: "Not found"},
		{name: "body", err: &ResponseError{StatusCode: 500, Body: "boom"}, contains: "boom"},
		{name: "cause", err: &ResponseError{StatusCode: 200, Err: ErrMalformedResponse}, contains: "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.contains)
			}
			if !errors.Is(tt.err, ErrResponse) {
				t.Error("errors.Is(err, ErrResponse) = false")
			}
		})
	}

	if !errors.Is(&ResponseError{Err: ErrMalformedResponse}, ErrMalformedResponse) {
		t.Error("ResponseError does not unwrap its cause")
	}
}
