package mcp

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/fpxtrace/internal/ctxutil"
)

func (s *Server) registerPrompts() {
	// trace: inserts one redacted trace as a fenced JSON block, like the editor slash command.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("trace",
			mcplib.WithPromptDescription("Insert a redacted Fiberplane Studio trace as JSON"),
			mcplib.WithArgument("trace_id",
				mcplib.ArgumentDescription("Hex trace id, as returned by fpx_list_traces"),
				mcplib.RequiredArgument(),
			),
		),
		withRequestID(s.handleTracePrompt),
	)
}

func (s *Server) handleTracePrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	traceID := request.Params.Arguments["trace_id"]
	if traceID == "" {
		return nil, fmt.Errorf("trace_id argument is required")
	}

	rendered, err := s.svc.Render(ctx, traceID)
	if err != nil {
		s.logger.WarnContext(ctx, "mcp: trace prompt failed", "trace_id", traceID, "request_id", ctxutil.RequestIDFromContext(ctx), "error", err)
		return nil, fmt.Errorf("mcp: trace prompt: %w", err)
	}

	return &mcplib.GetPromptResult{
		Description: rendered.Label,
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: rendered.Text,
				},
			},
		},
	}, nil
}
