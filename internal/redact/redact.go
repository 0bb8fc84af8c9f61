// Package redact strips sensitive attributes from collector spans before
// they are displayed or inserted into an editor.
package redact

import (
	"github.com/ashita-ai/fpxtrace/internal/model"
)

// Mask replaces the value of masked attributes.
const Mask = "*****"

// Redactor removes or masks sensitive span attributes. The zero value is not
// useful; use New or Default.
type Redactor struct {
	drop map[string]bool
	mask map[string]bool
}

// Default returns a Redactor with only the built-in rules: captured
// environment variables are dropped, the authorization and Neon connection
// string headers are masked.
func Default() *Redactor {
	return New(nil, nil)
}

// New returns a Redactor with the built-in rules plus extra keys to mask and
// drop. A key listed in both is dropped.
func New(extraMask, extraDrop []string) *Redactor {
	r := &Redactor{
		drop: map[string]bool{
			model.AttrFPXRequestEnv: true,
		},
		mask: map[string]bool{
			model.AttrHTTPAuthorization:        true,
			model.AttrHTTPNeonConnectionString: true,
		},
	}
	for _, k := range extraMask {
		if k != "" {
			r.mask[k] = true
		}
	}
	for _, k := range extraDrop {
		if k != "" {
			r.drop[k] = true
			delete(r.mask, k)
		}
	}
	return r
}

// Span returns a copy of span with sensitive attributes removed or masked.
// The input span is not modified. Applying it twice gives the same result as
// applying it once.
func (r *Redactor) Span(span model.Span) model.Span {
	p := span.ParsedPayload
	p.Attributes = r.Attributes(p.Attributes)
	p.ScopeAttributes = r.Attributes(p.ScopeAttributes)
	p.ResourceAttributes = r.Attributes(p.ResourceAttributes)
	span.ParsedPayload = p
	return span
}

// Spans redacts every span, returning a new slice.
func (r *Redactor) Spans(spans []model.Span) []model.Span {
	if spans == nil {
		return nil
	}
	out := make([]model.Span, len(spans))
	for i, s := range spans {
		out[i] = r.Span(s)
	}
	return out
}

// Trace returns a copy of t with every span redacted.
func (r *Redactor) Trace(t model.Trace) model.Trace {
	return model.Trace{TraceID: t.TraceID, Spans: r.Spans(t.Spans)}
}

// Attributes returns a redacted copy of attrs. Masking only applies to keys
// that are present; a present key with a null value is masked too.
func (r *Redactor) Attributes(attrs model.Attributes) model.Attributes {
	if attrs == nil {
		return nil
	}
	out := attrs.Clone()
	for k := range out {
		switch {
		case r.drop[k]:
			delete(out, k)
		case r.mask[k]:
			out[k] = model.StringValue(Mask)
		}
	}
	return out
}

var defaultRedactor = Default()

// Span applies the built-in rules to span.
func Span(span model.Span) model.Span {
	return defaultRedactor.Span(span)
}
