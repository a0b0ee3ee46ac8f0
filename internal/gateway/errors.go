// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkErrorMessage is the fixed user-facing message for requests that
// never got a response.
const NetworkErrorMessage = "Network error. Please check your internet connection."

// NetworkError reports that no response was received. Message is always
// NetworkErrorMessage; the transport failure is kept only for Unwrap.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string { return e.Message }

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError carries the error body the server sent, verbatim.
type ServerError struct {
	StatusCode int
	Body       json.RawMessage
}

// Error prefers a message field from a JSON body and falls back to the raw text.
func (e *ServerError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Message extracts a human-readable message from common error payload shapes:
// {"message": ...}, {"error": "..."}, {"error": {"message": ...}}, {"msg": ...}.
func (e *ServerError) Message() string {
	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error_description", "msg", "details"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	switch v := payload["error"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if s, ok := v["message"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Decode unmarshals the error body into v.
func (e *ServerError) Decode(v any) error {
	return json.Unmarshal(e.Body, v)
}

// StatusError is the failure itself when the server answered with a non-2xx
// status and an empty or unreadable body.
type StatusError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	// Err is the body read failure, if any.
	Err error
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s (reading body: %v)", e.Method, e.URL, status, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, status)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a server response.
func StatusCode(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var ste *StatusError
	if errors.As(err, &ste) {
		return ste.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNetwork reports whether err is a connectivity failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
