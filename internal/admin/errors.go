package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors for the three failure kinds of an Admin API request.
// Every error returned by Client.Request matches exactly one of them via errors.Is().
var (
	// ErrUpstream indicates the Admin API answered with a non-success status.
	ErrUpstream = errors.New("admin API returned an error status")

	// ErrNetwork indicates the request was sent but no response was received.
	ErrNetwork = errors.New("no response from admin API")

	// ErrRequest indicates the request could not be constructed or sent.
	ErrRequest = errors.New("admin API request could not be sent")

	// ErrPageLimitExceeded is returned by GetPluginStats when the upstream keeps
	// returning a next cursor after Config.MaxPages pages.
	ErrPageLimitExceeded = errors.New("plugin pagination exceeded the maximum page count")
)

// networkErrorMessage is returned for every transport-level failure regardless of endpoint.
const networkErrorMessage = "Network Error: No response received from Admin API. " +
	"Please check your network connection and Admin API endpoint."

// maxTextDetail is the number of characters of a plain-text error body kept in UpstreamError.
const maxTextDetail = 200

// UpstreamError is returned when the Admin API responds with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	// Detail is the extracted error detail, empty when the body carried none.
	Detail string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("Admin API Error (Status %d)", e.StatusCode)
	}
	return fmt.Sprintf("Admin API Error (Status %d): %s", e.StatusCode, e.Detail)
}

// Is allows UpstreamError to match ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NetworkError is returned when no response was received from the Admin API.
type NetworkError struct {
	Err error
}

// Error implements the error interface. The message is fixed; the cause is
// available through Unwrap for logging.
func (e *NetworkError) Error() string {
	return networkErrorMessage
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows NetworkError to match ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// RequestError is returned when the request could not be built.
type RequestError struct {
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	cause := "unknown error"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return fmt.Sprintf("Request Error: %s. Please check your request parameters and try again.", cause)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is allows RequestError to match ErrRequest.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

// newUpstreamError builds an UpstreamError from a failed response body.
//
// A JSON object contributes its "message" field, or its compact serialization
// when there is none. A JSON string or a non-JSON body contributes its first
// 200 characters. Empty bodies, numbers, booleans and null contribute nothing.
func newUpstreamError(statusCode int, body []byte) *UpstreamError {
	return &UpstreamError{
		StatusCode: statusCode,
		Detail:     extractDetail(body),
	}
}

func extractDetail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return truncate(trimmed, maxTextDetail)
	}

	switch v := decoded.(type) {
	case map[string]any:
		if msg, ok := v["message"]; ok && msg != nil && msg != "" {
			if s, ok := msg.(string); ok {
				return s
			}
			if b, err := json.Marshal(msg); err == nil {
				return string(b)
			}
		}
		return compact(trimmed)
	case []any:
		return compact(trimmed)
	case string:
		return truncate(v, maxTextDetail)
	default:
		return ""
	}
}

// compact returns the JSON text without insignificant whitespace, keeping key order.
func compact(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}

// truncate returns at most n characters of s without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
