// Command fpxtrace serves redacted Fiberplane Studio traces to editors over
// MCP (stdio or streamable HTTP) and a small JSON command API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/oklog/run"

	"github.com/ashita-ai/fpxtrace/internal/collector"
	"github.com/ashita-ai/fpxtrace/internal/command"
	"github.com/ashita-ai/fpxtrace/internal/config"
	"github.com/ashita-ai/fpxtrace/internal/mcp"
	"github.com/ashita-ai/fpxtrace/internal/redact"
	"github.com/ashita-ai/fpxtrace/internal/server"
	"github.com/ashita-ai/fpxtrace/internal/service/traces"
	"github.com/ashita-ai/fpxtrace/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	// Load .env file if present (non-fatal; editors usually pass env directly).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fpxtrace: %v\n", err)
		return 2
	}

	// stdout carries MCP frames in stdio mode, so logs always go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	err = serve(context.Background(), cfg, logger)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		logger.Info("fpxtrace stopped")
		return 0
	default:
		logger.Error("fatal error", "error", err)
		return 1
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("fpxtrace starting",
		"version", version,
		"transport", cfg.Transport,
		"studio_url", cfg.StudioURL,
	)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, telemetry.Settings{
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.ServiceName,
		Version:     version,
		Insecure:    cfg.OTELInsecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	client, err := collector.NewClient(collector.Config{
		BaseURL: cfg.StudioURL,
		Timeout: cfg.CollectorTimeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("collector: %w", err)
	}

	svc := traces.New(client,
		redact.New(cfg.RedactMaskKeys, cfg.RedactDropKeys),
		traces.SummaryOptions{SpanName: cfg.SummarySpan},
		logger,
	)
	mcpSrv := mcp.New(svc, logger, version)

	var g run.Group

	if cfg.Transport.ServesStdio() {
		ctx, cancel := context.WithCancel(ctx)
		stdio := mcpserver.NewStdioServer(mcpSrv.MCPServer())
		stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
		g.Add(func() error {
			logger.Info("mcp stdio server starting")
			return stdio.Listen(ctx, os.Stdin, os.Stdout)
		}, func(error) {
			cancel()
		})
	}

	if cfg.Transport.ServesHTTP() {
		srv := server.New(server.ServerConfig{
			Commands:            command.New(svc),
			Logger:              logger,
			MCPServer:           mcpSrv.MCPServer(),
			Port:                cfg.Port,
			ReadTimeout:         cfg.ReadTimeout,
			WriteTimeout:        cfg.WriteTimeout,
			Version:             version,
			CollectorURL:        client.BaseURL(),
			MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		})
		g.Add(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown error", "error", err)
			}
		})
	}

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	return g.Run()
}
