package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for missing or malformed caller input, such
// as a trace id that is not a hex identifier.
var ErrInvalidArgument = errors.New("invalid argument")

// Trace is a trace id together with its spans, in the order the collector
// returned them.
type Trace struct {
	TraceID string `json:"traceId"`
	Spans   []Span `json:"spans"`
}

// Span is a span as served by the Studio collector's API.
type Span struct {
	SpanID        string      `json:"spanId"`
	TraceID       string      `json:"traceId"`
	ParsedPayload SpanPayload `json:"parsedPayload"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	UpdatedAt     string      `json:"updatedAt,omitempty"`
}

// Name returns the span's operation name.
func (s Span) Name() string {
	return s.ParsedPayload.Name
}

// Attributes returns the span's own attributes.
func (s Span) Attributes() Attributes {
	return s.ParsedPayload.Attributes
}

// SpanPayload is the OTEL span recorded by the collector. Nested structures
// the core never inspects (status, events, links) are carried as raw JSON so
// they render exactly as received.
type SpanPayload struct {
	TraceID            string          `json:"traceId,omitempty"`
	SpanID             string          `json:"spanId,omitempty"`
	ParentSpanID       *string         `json:"parentSpanId,omitempty"`
	Name               string          `json:"name"`
	TraceState         string          `json:"traceState,omitempty"`
	Flags              *uint32         `json:"flags,omitempty"`
	Kind               string          `json:"kind,omitempty"`
	ScopeName          *string         `json:"scopeName,omitempty"`
	ScopeVersion       *string         `json:"scopeVersion,omitempty"`
	StartTime          string          `json:"startTime,omitempty"`
	EndTime            string          `json:"endTime,omitempty"`
	Attributes         Attributes      `json:"attributes"`
	ScopeAttributes    Attributes      `json:"scopeAttributes,omitempty"`
	ResourceAttributes Attributes      `json:"resourceAttributes,omitempty"`
	Status             json.RawMessage `json:"status,omitempty"`
	Events             json.RawMessage `json:"events,omitempty"`
	Links              json.RawMessage `json:"links,omitempty"`
}

// ParseTraceID validates that id is a non-empty string of hex digits. No
// particular length is assumed.
func ParseTraceID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty trace id", ErrInvalidArgument)
	}
	for i := 0; i < len(id); i++ {
		if !isHex(id[i]) {
			return "", fmt.Errorf("%w: trace id %q is not a hex identifier", ErrInvalidArgument, id)
		}
	}
	return id, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
