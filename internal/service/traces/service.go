// Package traces provides the trace listing and rendering logic shared by
// the MCP server and the HTTP command API.
//
// Every span is redacted before it is labelled or serialized, and nothing
// fetched from the collector is kept between calls.
package traces

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashita-ai/fpxtrace/internal/model"
	"github.com/ashita-ai/fpxtrace/internal/redact"
	"github.com/ashita-ai/fpxtrace/internal/telemetry"
)

// Source fetches traces and spans. *collector.Client implements it.
type Source interface {
	ListTraces(ctx context.Context) ([]model.Trace, error)
	ListSpans(ctx context.Context, traceID string) ([]model.Span, error)
}

// Service lists and renders collector traces.
type Service struct {
	source   Source
	redactor *redact.Redactor
	summary  SummaryOptions
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Service. A nil redactor uses the built-in rules.
func New(source Source, redactor *redact.Redactor, summary SummaryOptions, logger *slog.Logger) *Service {
	if redactor == nil {
		redactor = redact.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:   source,
		redactor: redactor,
		summary:  summary,
		logger:   logger,
		tracer:   telemetry.Tracer("fpxtrace/traces"),
	}
}

// List fetches all traces and returns one Choice per top-level span. An empty
// collector yields the single non-actionable "No traces found" entry; fetch
// and decode failures are returned as errors.
func (s *Service) List(ctx context.Context) ([]Choice, error) {
	ctx, span := s.tracer.Start(ctx, "traces.list")
	defer span.End()

	fetched, err := s.source.ListTraces(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list traces failed")
		return nil, fmt.Errorf("traces: list: %w", err)
	}

	redacted := make([]model.Trace, len(fetched))
	for i, t := range fetched {
		redacted[i] = s.redactor.Trace(t)
	}
	choices := Summarize(redacted, s.summary)

	span.SetAttributes(
		attribute.Int("fpx.trace_count", len(fetched)),
		attribute.Int("fpx.choice_count", len(choices)),
	)
	s.logger.DebugContext(ctx, "traces: listed", "traces", len(fetched), "choices", len(choices))
	return choices, nil
}

// Render fetches the spans of traceID, redacts them and formats the trace.
// A malformed id fails with model.ErrInvalidArgument before any request.
func (s *Service) Render(ctx context.Context, traceID string) (Rendered, error) {
	ctx, span := s.tracer.Start(ctx, "traces.render", trace.WithAttributes(
		attribute.String("fpx.trace_id", traceID),
	))
	defer span.End()

	id, err := model.ParseTraceID(traceID)
	if err != nil {
		span.SetStatus(codes.Error, "invalid trace id")
		return Rendered{}, fmt.Errorf("traces: render: %w", err)
	}

	spans, err := s.source.ListSpans(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list spans failed")
		return Rendered{}, fmt.Errorf("traces: render %s: %w", id, err)
	}

	out, err := RenderTrace(model.Trace{TraceID: id, Spans: s.redactor.Spans(spans)})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialize failed")
		return Rendered{}, err
	}

	span.SetAttributes(attribute.Int("fpx.span_count", len(spans)))
	s.logger.DebugContext(ctx, "traces: rendered", "trace_id", id, "spans", len(spans), "bytes", len(out.Text))
	return out, nil
}
