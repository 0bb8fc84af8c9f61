package traces

import (
	"fmt"

	"github.com/ashita-ai/fpxtrace/internal/model"
)

// Placeholders used when a span lacks the attribute, or it has the wrong type.
const (
	UnknownMethod = "UNKNOWN"
	DefaultPath   = "/"
	UnknownStatus = "???"
)

// NoTracesLabel labels the synthetic entry returned when the collector has
// no traces.
const NoTracesLabel = "No traces found"

// NoTracesText is the selector text of the synthetic entry. It is not a
// trace id and the entry is never actionable.
const NoTracesText = "No traces found, check if your Fiberplane Studio is running and if there are traces recorded."

// Choice is one selectable entry: a display label and the trace id that
// selects it. Actionable is false only for the synthetic empty-list entry.
type Choice struct {
	Label      string `json:"label"`
	Selector   string `json:"selector"`
	Actionable bool   `json:"actionable"`
}

// SummaryOptions controls which spans are listed.
type SummaryOptions struct {
	// SpanName selects the top-level spans to list. Empty lists every span.
	SpanName string
}

// DefaultSummaryOptions lists only the root "request" span of each trace.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{SpanName: model.RequestSpanName}
}

// Summarize builds one Choice per qualifying span. Spans should already be
// redacted; labels only ever read the method, path and status attributes.
// The traces are not modified.
func Summarize(traces []model.Trace, opts SummaryOptions) []Choice {
	if len(traces) == 0 {
		return []Choice{{Label: NoTracesLabel, Selector: NoTracesText, Actionable: false}}
	}

	var choices []Choice
	for _, t := range traces {
		for _, span := range t.Spans {
			if opts.SpanName != "" && span.Name() != opts.SpanName {
				continue
			}
			choices = append(choices, Choice{
				Label:      Label(span),
				Selector:   t.TraceID,
				Actionable: true,
			})
		}
	}
	return choices
}

// Label formats a span as "{name}: {method} {path} ({status})".
func Label(span model.Span) string {
	attrs := span.Attributes()

	method, ok := attrs.String(model.AttrHTTPRequestMethod)
	if !ok || method == "" {
		method = UnknownMethod
	}
	path, ok := attrs.String(model.AttrFPXRequestPathname)
	if !ok || path == "" {
		path = DefaultPath
	}
	status, ok := attrs.Display(model.AttrHTTPResponseStatusCode)
	if !ok || status == "" {
		status = UnknownStatus
	}

	return fmt.Sprintf("%s: %s %s (%s)", span.Name(), method, path, status)
}
