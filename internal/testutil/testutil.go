// Package testutil provides shared test infrastructure: a quiet logger and an
// in-process stand-in for the Fiberplane Studio collector API.
//
// Usage:
//
//	studio := testutil.NewStudio(t)
//	studio.SetTraces(testutil.SampleTracesJSON)
//	client, _ := collector.NewClient(collector.Config{BaseURL: studio.URL})
package testutil

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
)

// SampleTraceID is the id used by the sample fixtures.
const SampleTraceID = "abc123"

// SampleSpansJSON is a single request span in the collector's wire shape. It
// carries every attribute the redactor touches.
const SampleSpansJSON = `[
  {
    "spanId": "s1",
    "traceId": "abc123",
    "createdAt": "2024-09-12T10:00:00Z",
    "updatedAt": "2024-09-12T10:00:01Z",
    "parsedPayload": {
      "trace_id": "abc123",
      "span_id": "s1",
      "parent_span_id": null,
      "name": "request",
      "trace_state": "",
      "flags": 1,
      "kind": "SERVER",
      "scope_name": null,
      "scope_version": null,
      "start_time": "2024-09-12T10:00:00Z",
      "end_time": "2024-09-12T10:00:01Z",
      "attributes": {
        "http.request.method": "GET",
        "fpx.http.request.pathname": "/foo",
        "http.response.status_code": "200",
        "http.request.header.authorization": "Bearer secret-token",
        "http.request.header.neon-connection-string": "postgres://user:pw@neon/db",
        "fpx.http.request.env": "{\"DATABASE_URL\":\"postgres://secret\"}"
      }
    }
  }
]`

// SampleTracesJSON wraps SampleSpansJSON as the trace list response.
const SampleTracesJSON = `[{"traceId": "abc123", "spans": ` + SampleSpansJSON + `}]`

// TestLogger returns a logger that only surfaces warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// Studio is a fake collector serving /v1/traces and /v1/traces/{id}/spans
// from canned bodies. It is safe for concurrent use.
type Studio struct {
	*httptest.Server

	mu     sync.Mutex
	traces string
	spans  map[string]string
	status int
	body   string
	hits   map[string]int
}

// NewStudio starts a fake collector that answers with an empty trace list
// until configured. It is closed when the test ends.
func NewStudio(t testing.TB) *Studio {
	t.Helper()
	s := &Studio{
		traces: "[]",
		spans:  make(map[string]string),
		hits:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/traces", s.handleTraces)
	mux.HandleFunc("GET /v1/traces/{id}/spans", s.handleSpans)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetTraces sets the raw body of the trace list response.
func (s *Studio) SetTraces(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces = raw
}

// SetSpans sets the raw body of the span list response for one trace.
func (s *Studio) SetSpans(traceID, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spans[traceID] = raw
}

// Fail makes every subsequent request answer with status and body.
// A zero status restores normal responses.
func (s *Studio) Fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Hits returns how many requests reached path.
func (s *Studio) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Studio) handleTraces(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, r) {
		return
	}
	s.mu.Lock()
	body := s.traces
	s.mu.Unlock()
	writeRaw(w, http.StatusOK, body)
}

func (s *Studio) handleSpans(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, r) {
		return
	}
	s.mu.Lock()
	body, ok := s.spans[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeRaw(w, http.StatusOK, "[]")
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// failed records the hit and writes the configured failure, if any.
func (s *Studio) failed(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, body := s.status, s.body
	s.mu.Unlock()
	if status == 0 {
		return false
	}
	writeRaw(w, status, body)
	return true
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
