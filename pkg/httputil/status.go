package httputil

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response. Message holds the "error" field of
// a JSON error response when one was present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// CheckStatus classifies an HTTP status code. Server errors and 429 are
// wrapped as retryable.
func CheckStatus(code int) error {
	return CheckStatusMessage(code, "")
}

// CheckStatusMessage is CheckStatus with the server's error message attached.
func CheckStatusMessage(code int, msg string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500, code == http.StatusTooManyRequests:
		return Retryable(&StatusError{StatusCode: code, Message: msg})
	default:
		return &StatusError{StatusCode: code, Message: msg}
	}
}
