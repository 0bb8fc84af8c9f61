package model

import "time"

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamInvalid     = "UPSTREAM_INVALID"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	CollectorURL string `json:"collector_url"`
	Uptime       int64  `json:"uptime_seconds"`
}

// CommandInfo describes a registered host command.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Argument    string `json:"argument,omitempty"`
}

// RunCommandRequest is the request body for POST /v1/commands/{name}/run.
type RunCommandRequest struct {
	Args []string `json:"args"`
}
