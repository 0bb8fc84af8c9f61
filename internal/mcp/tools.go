package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/fpxtrace/internal/service/traces"
)

// traceSummary is the wire shape of one fpx_list_traces entry.
type traceSummary struct {
	Label      string `json:"label"`
	TraceID    string `json:"trace_id"`
	Actionable bool   `json:"actionable"`
}

func summaries(choices []traces.Choice) []traceSummary {
	out := make([]traceSummary, len(choices))
	for i, c := range choices {
		out[i] = traceSummary{Label: c.Label, TraceID: c.Selector, Actionable: c.Actionable}
	}
	return out
}

func (s *Server) registerTools() {
	// fpx_list_traces: list recorded requests.
	s.mcpServer.AddTool(
		mcplib.NewTool("fpx_list_traces",
			mcplib.WithDescription(`List HTTP requests recorded by the local Fiberplane Studio.

Each entry has a label like "request: GET /users (200)" and the trace_id to
pass to fpx_get_trace. If Studio has no traces, a single entry with
actionable=false explains that Studio may not be running.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
		),
		withRequestID(s.handleListTraces),
	)

	// fpx_get_trace: fetch one redacted trace.
	s.mcpServer.AddTool(
		mcplib.NewTool("fpx_get_trace",
			mcplib.WithDescription(`Get every span of one trace as pretty-printed JSON inside a json code block.

Authorization and Neon connection string headers are masked, and the
request environment is removed.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("trace_id",
				mcplib.Description("Hex trace id from fpx_list_traces"),
				mcplib.Required(),
			),
		),
		withRequestID(s.handleGetTrace),
	)
}

func (s *Server) handleListTraces(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	choices, err := s.svc.List(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("list traces failed: %v", err)), nil
	}

	resultData, err := json.MarshalIndent(summaries(choices), "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format JSON: %v", err)), nil
	}
	return textResult(string(resultData)), nil
}

func (s *Server) handleGetTrace(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	traceID := request.GetString("trace_id", "")
	if traceID == "" {
		return errorResult("no trace id provided"), nil
	}

	rendered, err := s.svc.Render(ctx, traceID)
	if err != nil {
		return errorResult(fmt.Sprintf("get trace failed: %v", err)), nil
	}
	return textResult(rendered.Text), nil
}
