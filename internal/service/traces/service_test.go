package traces_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fpxtrace/internal/collector"
	"github.com/ashita-ai/fpxtrace/internal/model"
	"github.com/ashita-ai/fpxtrace/internal/redact"
	"github.com/ashita-ai/fpxtrace/internal/service/traces"
	"github.com/ashita-ai/fpxtrace/internal/testutil"
)

func newService(t *testing.T, studio *testutil.Studio) *traces.Service {
	t.Helper()
	client, err := collector.NewClient(collector.Config{BaseURL: studio.URL, Logger: testutil.TestLogger()})
	require.NoError(t, err)
	return traces.New(client, redact.Default(), traces.DefaultSummaryOptions(), testutil.TestLogger())
}

// countingSource fails the test if the service reaches the network.
type countingSource struct {
	calls int
}

func (s *countingSource) ListTraces(context.Context) ([]model.Trace, error) {
	s.calls++
	return nil, errors.New("unexpected call")
}

func (s *countingSource) ListSpans(context.Context, string) ([]model.Span, error) {
	s.calls++
	return nil, errors.New("unexpected call")
}

func TestListRoundTrip(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.SetTraces(testutil.SampleTracesJSON)
	svc := newService(t, studio)

	choices, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, traces.Choice{
		Label:      "request: GET /foo (200)",
		Selector:   testutil.SampleTraceID,
		Actionable: true,
	}, choices[0])
}

func TestListIntegerStatusMatchesStringStatus(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.SetTraces(strings.Replace(testutil.SampleTracesJSON,
		`"http.response.status_code": "200"`, `"http.response.status_code": 200`, 1))
	svc := newService(t, studio)

	choices, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, "request: GET /foo (200)", choices[0].Label)
}

func TestListEmptyYieldsPlaceholder(t *testing.T) {
	studio := testutil.NewStudio(t)
	svc := newService(t, studio)

	choices, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, traces.NoTracesLabel, choices[0].Label)
	assert.Equal(t, traces.NoTracesText, choices[0].Selector)
	assert.False(t, choices[0].Actionable)
}

func TestListUpstreamFailure(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.Fail(http.StatusInternalServerError, "boom")
	svc := newService(t, studio)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.True(t, collector.IsFetch(err))

	var fe *collector.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
}

func TestListMalformedBody(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.SetTraces(`{"not": "a list"`)
	svc := newService(t, studio)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.True(t, collector.IsDecode(err))
}

func TestRenderRoundTrip(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.SetSpans(testutil.SampleTraceID, testutil.SampleSpansJSON)
	svc := newService(t, studio)

	out, err := svc.Render(context.Background(), testutil.SampleTraceID)
	require.NoError(t, err)

	assert.Equal(t, "Trace: abc123", out.Label)
	assert.True(t, strings.HasPrefix(out.Text, "```json\n"), "text should open a json fence")
	assert.True(t, strings.HasSuffix(out.Text, "\n```"), "text should close the fence")

	for _, want := range []string{"GET", "/foo", "200", `"traceId": "abc123"`, redact.Mask} {
		assert.Contains(t, out.Text, want)
	}
	for _, secret := range []string{"secret-token", "postgres://user:pw", "DATABASE_URL", model.AttrFPXRequestEnv} {
		assert.NotContains(t, out.Text, secret)
	}
	assert.Equal(t, 1, studio.Hits("/v1/traces/abc123/spans"))
}

func TestRenderIsDeterministic(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.SetSpans(testutil.SampleTraceID, testutil.SampleSpansJSON)
	svc := newService(t, studio)

	first, err := svc.Render(context.Background(), testutil.SampleTraceID)
	require.NoError(t, err)
	second, err := svc.Render(context.Background(), testutil.SampleTraceID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderUnknownTraceIsEmpty(t *testing.T) {
	studio := testutil.NewStudio(t)
	svc := newService(t, studio)

	out, err := svc.Render(context.Background(), "ffff")
	require.NoError(t, err)
	assert.Contains(t, out.Text, `"spans": []`)
}

func TestRenderInvalidIDMakesNoRequest(t *testing.T) {
	for _, id := range []string{"", "../etc", "abc 123", "xyz"} {
		t.Run(id, func(t *testing.T) {
			src := &countingSource{}
			svc := traces.New(src, nil, traces.DefaultSummaryOptions(), testutil.TestLogger())

			_, err := svc.Render(context.Background(), id)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
			assert.Zero(t, src.calls)
		})
	}
}

func TestRenderUpstreamFailure(t *testing.T) {
	studio := testutil.NewStudio(t)
	studio.Fail(http.StatusBadGateway, "no upstream")
	svc := newService(t, studio)

	_, err := svc.Render(context.Background(), testutil.SampleTraceID)
	require.Error(t, err)
	assert.True(t, collector.IsFetch(err))
}
