package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const (
	tracesURI       = "fpx://traces"
	traceURIPrefix  = tracesURI + "/"
	traceURIPattern = traceURIPrefix + "{id}"
)

func (s *Server) registerResources() {
	// fpx://traces: the same list fpx_list_traces returns.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			tracesURI,
			"Studio Traces",
			mcplib.WithResourceDescription("Requests recorded by the local Fiberplane Studio"),
			mcplib.WithMIMEType("application/json"),
		),
		withRequestID(s.handleTracesResource),
	)

	// fpx://traces/{id}: one redacted trace.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			traceURIPattern,
			"Studio Trace",
			mcplib.WithTemplateDescription("Every span of one trace, redacted, as JSON"),
			mcplib.WithTemplateMIMEType("text/markdown"),
		),
		withRequestID(s.handleTraceResource),
	)
}

func (s *Server) handleTracesResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	choices, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcp: list traces: %w", err)
	}

	data, err := json.MarshalIndent(summaries(choices), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal traces: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      tracesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleTraceResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	traceID, err := parseTraceURI(uri)
	if err != nil {
		return nil, err
	}

	rendered, err := s.svc.Render(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("mcp: render trace: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     rendered.Text,
		},
	}, nil
}

// parseTraceURI extracts the trace id from fpx://traces/{id}. The id itself
// is validated by the service.
func parseTraceURI(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, traceURIPrefix)
	if !ok {
		return "", fmt.Errorf("mcp: invalid trace URI: %s", uri)
	}
	if id == "" {
		return "", fmt.Errorf("mcp: invalid trace URI: empty trace id")
	}
	if strings.Contains(id, "/") {
		return "", fmt.Errorf("mcp: invalid trace URI: %s", uri)
	}
	return id, nil
}
