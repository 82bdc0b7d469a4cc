// Package http provides the JSON API server and its handlers.
//
// This file implements parsing and validation of request bodies and query
// parameters, mapping each failure to the status code the API reports.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultLogsLimit = 10
	maxLogsLimit     = 1000
	maxBodyBytes     = 64 << 10
)

// RequestError carries the status code a parsing failure should produce.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// Response converts the error into the matching JSON error response.
func (e *RequestError) Response() *JSONResponseBuilder {
	return ErrorResponse(e.Status, e.Detail)
}

func malformed(format string, args ...any) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Detail: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) *RequestError {
	return &RequestError{Status: http.StatusUnprocessableEntity, Detail: fmt.Sprintf(format, args...)}
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string
}

// ParseChatRequest decodes {"message": string}. Syntax errors are 400;
// a missing or non-string message is 422. The message is kept verbatim.
func ParseChatRequest(r *http.Request) (ChatRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return ChatRequest{}, malformed("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return ChatRequest{}, &RequestError{Status: http.StatusRequestEntityTooLarge, Detail: "request body too large"}
	}

	var raw struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ChatRequest{}, invalid("field %q must be a %s", typeErr.Field, "string")
		}
		return ChatRequest{}, malformed("malformed JSON body")
	}
	if raw.Message == nil {
		return ChatRequest{}, invalid("field \"message\" is required")
	}

	return ChatRequest{Message: *raw.Message}, nil
}

// ParseLimit reads ?limit=N, defaulting when absent and rejecting values
// outside 0..maxLogsLimit.
func ParseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return defaultLogsLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid("limit must be an integer")
	}
	if n < 0 || n > maxLogsLimit {
		return 0, invalid("limit must be between 0 and %d", maxLogsLimit)
	}
	return n, nil
}
