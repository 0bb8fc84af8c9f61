// Package fpxtrace provides a Go client for the fpxtrace command API.
package fpxtrace

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the server.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamInvalid     = "UPSTREAM_INVALID"
)

// Error represents an error from the fpxtrace API with the HTTP status code
// and the server's error message.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fpxtrace: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404, such as an unknown command.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsInvalidInput returns true if the server rejected the arguments, for
// example a missing or malformed trace id.
func IsInvalidInput(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeInvalidInput
	}
	return false
}

// IsStudioUnavailable returns true if fpxtrace could not reach Fiberplane
// Studio or Studio answered with an error status.
func IsStudioUnavailable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeUpstreamUnavailable
	}
	return false
}

// IsStudioInvalid returns true if Studio answered with a body fpxtrace could
// not parse.
func IsStudioInvalid(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeUpstreamInvalid
	}
	return false
}
