// Package mcp implements the Model Context Protocol server for fpxtrace.
//
// The MCP server exposes the same trace operations as the HTTP command API
// through a prompt, tools and resources, so MCP-capable editors and agents
// can pull redacted Fiberplane Studio traces into their context.
package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/fpxtrace/internal/ctxutil"
	"github.com/ashita-ai/fpxtrace/internal/service/traces"
)

// TraceService lists and renders traces. *traces.Service implements it.
type TraceService interface {
	List(ctx context.Context) ([]traces.Choice, error)
	Render(ctx context.Context, traceID string) (traces.Rendered, error)
}

// Server wraps the MCP server with the trace service.
type Server struct {
	mcpServer *mcpserver.MCPServer
	svc       TraceService
	logger    *slog.Logger
}

const serverInstructions = `fpxtrace reads HTTP request traces recorded by a local Fiberplane Studio.

Call fpx_list_traces to see recent requests, then fpx_get_trace with a trace_id
to get the full trace as JSON. Sensitive headers are masked and environment
variables are removed before anything is returned.`

// New creates and configures a new MCP server with all prompts, tools and
// resources. version is reported to clients during initialization.
func New(svc TraceService, logger *slog.Logger, version string) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"fpxtrace",
		version,
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(serverInstructions),
		mcpserver.WithRecovery(),
	)

	s.registerPrompts()
	s.registerTools()
	s.registerResources()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// withRequestID gives each MCP call a request id. Calls arriving over /mcp
// keep the one set by the HTTP middleware; stdio calls get a fresh uuid.
func withRequestID[Req, Res any](h func(context.Context, Req) (Res, error)) func(context.Context, Req) (Res, error) {
	return func(ctx context.Context, req Req) (Res, error) {
		if ctxutil.RequestIDFromContext(ctx) == "" {
			ctx = ctxutil.WithRequestID(ctx, uuid.NewString())
		}
		return h(ctx, req)
	}
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}
