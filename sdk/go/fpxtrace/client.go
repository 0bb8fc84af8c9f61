package fpxtrace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds configuration for the fpxtrace client.
type Config struct {
	// BaseURL is the fpxtrace HTTP endpoint (e.g., "http://127.0.0.1:8789").
	BaseURL string

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with Timeout is used.
	HTTPClient *http.Client

	// Timeout for HTTP requests. Defaults to 30 seconds.
	Timeout time.Duration
}

// Client is an HTTP client for the fpxtrace command API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new fpxtrace client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fpxtrace: BaseURL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Health reports the server's status. It does not probe Studio.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Commands lists the registered slash commands.
func (c *Client) Commands(ctx context.Context) ([]Command, error) {
	var resp []Command
	if err := c.get(ctx, "/v1/commands", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Complete returns argument completions for the named command.
func (c *Client) Complete(ctx context.Context, name string, args ...string) ([]Completion, error) {
	q := url.Values{}
	for _, a := range args {
		q.Add("arg", a)
	}
	var resp []Completion
	if err := c.get(ctx, "/v1/commands/"+url.PathEscape(name)+"/completions", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Run executes the named command. For "trace", args[0] is the trace id.
func (c *Client) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	if args == nil {
		args = []string{}
	}
	var resp Output
	if err := c.post(ctx, "/v1/commands/"+url.PathEscape(name)+"/run", runBody{Args: args}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunTrace is shorthand for Run(ctx, "trace", traceID).
func (c *Client) RunTrace(ctx context.Context, traceID string) (*Output, error) {
	return c.Run(ctx, "trace", traceID)
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, path string, query url.Values, target any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fpxtrace: create request: %w", err)
	}
	return c.do(req, target)
}

func (c *Client) post(ctx context.Context, path string, body, target any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("fpxtrace: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("fpxtrace: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fpxtrace: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return handleResponse(resp, target)
}

// handleResponse unwraps the {"data": ...} envelope into target, or converts
// a non-2xx response into an *Error.
func handleResponse(resp *http.Response, target any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fpxtrace: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, resp.Header.Get("X-Request-ID"), body)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("fpxtrace: decode envelope: %w", err)
	}
	if target != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, target); err != nil {
			return fmt.Errorf("fpxtrace: decode data: %w", err)
		}
	}
	return nil
}

func parseErrorResponse(statusCode int, requestID string, body []byte) error {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Code == "" {
		return &Error{
			StatusCode: statusCode,
			Code:       http.StatusText(statusCode),
			Message:    strings.TrimSpace(string(body)),
			RequestID:  requestID,
		}
	}
	if env.Meta.RequestID != "" {
		requestID = env.Meta.RequestID
	}
	return &Error{
		StatusCode: statusCode,
		Code:       env.Error.Code,
		Message:    env.Error.Message,
		RequestID:  requestID,
	}
}
