package traces

import (
	"encoding/json"
	"fmt"

	"github.com/ashita-ai/fpxtrace/internal/model"
)

// SerializeError reports that a trace could not be encoded as JSON.
type SerializeError struct {
	TraceID string
	Err     error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("traces: failed to format JSON for trace %s: %v", e.TraceID, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

// Rendered is a trace formatted for insertion into an editor.
type Rendered struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// RenderTrace pretty-prints t as JSON inside a fenced json code block.
// Attribute keys are sorted, so output is stable for the same input.
func RenderTrace(t model.Trace) (Rendered, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return Rendered{}, &SerializeError{TraceID: t.TraceID, Err: err}
	}
	return Rendered{
		Label: "Trace: " + t.TraceID,
		Text:  "```json\n" + string(data) + "\n```",
	}, nil
}
