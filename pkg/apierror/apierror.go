package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 64 << 10

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// FromResponse builds an APIError from a non-2xx backend response. The body
// may be the gateway-style envelope {"error":{...}}, a bare {"code","message"}
// object, or plain text. The body is drained but not closed.
func FromResponse(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	out := &APIError{
		Code:       codeForStatus(resp.StatusCode),
		Message:    http.StatusText(resp.StatusCode),
		HTTPStatus: resp.StatusCode,
	}
	if out.Message == "" {
		out.Message = "unexpected status"
	}

	var envelope struct {
		Error *APIError `json:"error"`
		APIError
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		parsed := &envelope.APIError
		if envelope.Error != nil {
			parsed = envelope.Error
		}
		if parsed.Code != "" {
			out.Code = parsed.Code
		}
		if parsed.Message != "" {
			out.Message = parsed.Message
		}
		out.Details = parsed.Details
		return out
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		out.Details = text
	}

	return out
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}

	if status >= 500 {
		return "UPSTREAM_ERROR"
	}
	return "REQUEST_FAILED"
}
