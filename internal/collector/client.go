// Package collector is a read-only HTTP client for the Fiberplane Studio
// trace API.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/ashita-ai/fpxtrace/internal/ctxutil"
	"github.com/ashita-ai/fpxtrace/internal/model"
	"github.com/ashita-ai/fpxtrace/internal/telemetry"
)

// DefaultBaseURL is the address Studio listens on locally.
const DefaultBaseURL = "http://localhost:8788"

// DefaultTimeout bounds a single collector request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a non-2xx response body is kept in a
// FetchError.
const maxErrorBody = 512

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the collector. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is an optional custom HTTP client. Redirect following is
	// always disabled on the client that is actually used.
	HTTPClient *http.Client

	// Timeout bounds every collector request, including one shared by
	// concurrent ListTraces callers. Defaults to the custom client's own
	// Timeout when set, then to DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client fetches traces and spans from the collector. Methods are safe for
// concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	listGroup       singleflight.Group
	requestDuration metric.Float64Histogram
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("collector: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("collector: base URL %q must use http or https", baseURL)
	}

	timeout := cfg.Timeout
	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
		if timeout == 0 {
			timeout = httpClient.Timeout
		}
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = otelhttp.NewTransport(base)
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reqDur, _ := telemetry.Meter("fpxtrace/collector").Float64Histogram("fpx.collector.request.duration",
		metric.WithDescription("Duration of collector API requests (ms)"),
		metric.WithUnit("ms"),
	)

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &httpClient,
		timeout:         timeout,
		logger:          logger,
		requestDuration: reqDur,
	}, nil
}

// BaseURL returns the collector root URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTraces returns every trace the collector currently holds.
//
// Concurrent calls are collapsed into one request: a caller arriving while a
// request is in flight joins it and gets that request's result, so it may
// see data fetched slightly before its call. Nothing is kept after the
// request returns. The shared request is detached from any single caller's
// cancellation so that one caller giving up does not fail the others, and
// is bounded by the client timeout so a hung collector cannot hold the
// group. Each caller still stops waiting when its own context ends. The
// returned slice is owned by the caller, but the spans inside may
// be shared with concurrent callers and must be treated as read-only.
func (c *Client) ListTraces(ctx context.Context) ([]model.Trace, error) {
	ch := c.listGroup.DoChan("traces", func() (any, error) {
		var traces []model.Trace
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		if err := c.get(flightCtx, "/v1/traces", "/v1/traces", &traces); err != nil {
			return nil, err
		}
		return traces, nil
	})

	select {
	case <-ctx.Done():
		return nil, &FetchError{Method: http.MethodGet, URL: c.baseURL + "/v1/traces", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.Trace)), nil
	}
}

// ListSpans returns the spans of one trace. The trace id must be a hex
// identifier; anything else fails with model.ErrInvalidArgument before a
// request is made.
func (c *Client) ListSpans(ctx context.Context, traceID string) ([]model.Span, error) {
	id, err := model.ParseTraceID(traceID)
	if err != nil {
		return nil, fmt.Errorf("collector: list spans: %w", err)
	}

	var spans []model.Span
	path := "/v1/traces/" + url.PathEscape(id) + "/spans"
	if err := c.get(ctx, "/v1/traces/{trace_id}/spans", path, &spans); err != nil {
		return nil, err
	}
	return spans, nil
}

// get issues a GET for path and decodes the JSON body into dest. route is
// the templated path used as a metric attribute.
func (c *Client) get(ctx context.Context, route, path string, dest any) error {
	start := time.Now()
	status, err := c.doGet(ctx, path, dest)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case IsDecode(err):
		outcome = "decode_error"
	case err != nil:
		outcome = "fetch_error"
	}
	if c.requestDuration != nil {
		c.requestDuration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("outcome", outcome),
		))
	}
	c.logger.DebugContext(ctx, "collector: request",
		"path", path,
		"status", status,
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", ctxutil.RequestIDFromContext(ctx),
	)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, dest any) (int, error) {
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, &FetchError{Method: http.MethodGet, URL: target, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &FetchError{Method: http.MethodGet, URL: target, Err: unwrapURLError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &FetchError{Method: http.MethodGet, URL: target, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &FetchError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return resp.StatusCode, &DecodeError{URL: target, Err: err}
	}
	return resp.StatusCode, nil
}

// unwrapURLError drops the *url.Error wrapper, whose message repeats the
// method and URL already carried by FetchError.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
