package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fpxtrace/internal/testutil"
)

func TestParseTraceURI(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		wantID    string
		wantError bool
		errSubstr string
	}{
		{
			name:   "valid id",
			uri:    "fpx://traces/abc123",
			wantID: "abc123",
		},
		{
			name:   "id is passed through for the service to validate",
			uri:    "fpx://traces/zz",
			wantID: "zz",
		},
		{
			name:      "empty id",
			uri:       "fpx://traces/",
			wantError: true,
			errSubstr: "empty trace id",
		},
		{
			name:      "wrong scheme",
			uri:       "other://traces/abc",
			wantError: true,
			errSubstr: "invalid trace URI",
		},
		{
			name:      "nested path",
			uri:       "fpx://traces/abc/spans",
			wantError: true,
			errSubstr: "invalid trace URI",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseTraceURI(tt.uri)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func readRequest(uri string) mcplib.ReadResourceRequest {
	return mcplib.ReadResourceRequest{
		Params: mcplib.ReadResourceParams{URI: uri},
	}
}

func TestTracesResource(t *testing.T) {
	s := studioServer(t)

	contents, err := s.handleTracesResource(context.Background(), readRequest(tracesURI))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var got []traceSummary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	require.Len(t, got, 1)
	assert.Equal(t, testutil.SampleTraceID, got[0].TraceID)
}

func TestTraceResource(t *testing.T) {
	s := studioServer(t)

	uri := "fpx://traces/" + testutil.SampleTraceID
	contents, err := s.handleTraceResource(context.Background(), readRequest(uri))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, text.URI)
	assert.Contains(t, text.Text, `"traceId": "abc123"`)
	assert.NotContains(t, text.Text, "secret-token")
}

func TestTraceResource_InvalidID(t *testing.T) {
	s := studioServer(t)

	_, err := s.handleTraceResource(context.Background(), readRequest("fpx://traces/zz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}
