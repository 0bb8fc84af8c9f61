package redact_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fpxtrace/internal/model"
	"github.com/ashita-ai/fpxtrace/internal/redact"
)

func sensitiveSpan() model.Span {
	return model.Span{
		SpanID:  "01",
		TraceID: "abc123",
		ParsedPayload: model.SpanPayload{
			Name: "request",
			Attributes: model.Attributes{
				model.AttrHTTPRequestMethod:        model.StringValue("GET"),
				model.AttrFPXRequestPathname:       model.StringValue("/foo"),
				model.AttrHTTPResponseStatusCode:   model.IntValue(200),
				model.AttrFPXRequestEnv:            model.OtherValue(`{"DATABASE_URL":"postgres://u:p@h/db"}`),
				model.AttrHTTPAuthorization:        model.StringValue("Bearer s3cr3t"),
				model.AttrHTTPNeonConnectionString: model.StringValue("postgres://neon"),
				"custom.key":                       model.StringValue("kept"),
			},
			ResourceAttributes: model.Attributes{
				model.AttrHTTPAuthorization: model.StringValue("Bearer resource"),
			},
		},
	}
}

func TestSpan_DropsEnvironment(t *testing.T) {
	got := redact.Span(sensitiveSpan())
	_, ok := got.Attributes()[model.AttrFPXRequestEnv]
	assert.False(t, ok, "env key must be removed entirely, not masked")
}

func TestSpan_MasksHeaders(t *testing.T) {
	got := redact.Span(sensitiveSpan())
	assert.Equal(t, model.StringValue(redact.Mask), got.Attributes()[model.AttrHTTPAuthorization])
	assert.Equal(t, model.StringValue(redact.Mask), got.Attributes()[model.AttrHTTPNeonConnectionString])
	assert.Equal(t, model.StringValue(redact.Mask), got.ParsedPayload.ResourceAttributes[model.AttrHTTPAuthorization])
}

func TestSpan_PassesThroughOtherAttributes(t *testing.T) {
	in := sensitiveSpan()
	got := redact.Span(in)

	for _, key := range []string{
		model.AttrHTTPRequestMethod,
		model.AttrFPXRequestPathname,
		model.AttrHTTPResponseStatusCode,
		"custom.key",
	} {
		assert.Equal(t, in.Attributes()[key], got.Attributes()[key], key)
	}
	assert.Equal(t, in.SpanID, got.SpanID)
	assert.Equal(t, in.Name(), got.Name())
}

func TestSpan_DoesNotMaskAbsentKeys(t *testing.T) {
	in := model.Span{ParsedPayload: model.SpanPayload{
		Name:       "fetch",
		Attributes: model.Attributes{"a": model.StringValue("b")},
	}}
	got := redact.Span(in)
	assert.Equal(t, model.Attributes{"a": model.StringValue("b")}, got.Attributes())
}

func TestSpan_MasksNullValues(t *testing.T) {
	in := model.Span{ParsedPayload: model.SpanPayload{
		Attributes: model.Attributes{model.AttrHTTPAuthorization: nil},
	}}
	got := redact.Span(in)
	assert.Equal(t, model.StringValue(redact.Mask), got.Attributes()[model.AttrHTTPAuthorization])
}

func TestSpan_Idempotent(t *testing.T) {
	once := redact.Span(sensitiveSpan())
	twice := redact.Span(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("redaction is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestSpan_DoesNotMutateInput(t *testing.T) {
	in := sensitiveSpan()
	before := sensitiveSpan()
	_ = redact.Span(in)
	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("input span was mutated (-before +after):\n%s", diff)
	}
}

func TestSpan_NilAttributes(t *testing.T) {
	got := redact.Span(model.Span{ParsedPayload: model.SpanPayload{Name: "x"}})
	assert.Nil(t, got.Attributes())
}

func TestNew_ExtraKeys(t *testing.T) {
	r := redact.New([]string{"http.request.header.cookie", ""}, []string{"db.statement"})
	in := model.Span{ParsedPayload: model.SpanPayload{Attributes: model.Attributes{
		"http.request.header.cookie": model.StringValue("session=1"),
		"db.statement":               model.StringValue("select 1"),
		model.AttrFPXRequestEnv:      model.StringValue("X=1"),
		model.AttrHTTPAuthorization:  model.StringValue("Basic x"),
	}}}

	got := r.Span(in).Attributes()
	require.Len(t, got, 2)
	assert.Equal(t, model.StringValue(redact.Mask), got["http.request.header.cookie"])
	assert.Equal(t, model.StringValue(redact.Mask), got[model.AttrHTTPAuthorization])
}

func TestNew_DropWinsOverMask(t *testing.T) {
	r := redact.New([]string{model.AttrHTTPAuthorization}, []string{model.AttrHTTPAuthorization})
	got := r.Attributes(model.Attributes{model.AttrHTTPAuthorization: model.StringValue("x")})
	assert.Empty(t, got)
}

func TestTrace_RedactsEverySpan(t *testing.T) {
	tr := model.Trace{TraceID: "abc123", Spans: []model.Span{sensitiveSpan(), sensitiveSpan()}}
	got := redact.Default().Trace(tr)

	require.Len(t, got.Spans, 2)
	for _, s := range got.Spans {
		assert.Equal(t, model.StringValue(redact.Mask), s.Attributes()[model.AttrHTTPAuthorization])
	}
	assert.Equal(t, model.StringValue("Bearer s3cr3t"), tr.Spans[0].Attributes()[model.AttrHTTPAuthorization])
}
