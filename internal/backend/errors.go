package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APICallError is a failed call to the recommendation backend. StatusCode is 0 when
// no response was received.
type APICallError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APICallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError means the backend answered with a body none of the known shapes match.
type ParseError struct {
	Operation string
	Cause     error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: unparseable response: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: unparseable response", e.Operation)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UserMessage turns any error from this package (or one wrapping it) into text safe to
// show a user. Response bodies and internal details are never included.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "The request timed out. Please try again."
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "The service returned an unexpected response. Please try again later."
	}

	var apiErr *APICallError
	if errors.As(err, &apiErr) {
		switch code := apiErr.StatusCode; {
		case code == 0:
			return "Unable to reach the service. Please check your connection and try again."
		case code == http.StatusNotFound:
			return "The requested item was not found (404)."
		case code == http.StatusTooManyRequests:
			return "Too many requests (429). Please wait a moment and try again."
		case code >= 500:
			return fmt.Sprintf("The service is temporarily unavailable (%d). Please try again later.", code)
		case code >= 400:
			return fmt.Sprintf("The request could not be completed (%d). Please check your input and try again.", code)
		}
	}
	return "Something went wrong. Please try again."
}
