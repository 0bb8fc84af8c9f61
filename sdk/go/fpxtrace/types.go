package fpxtrace

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	CollectorURL string `json:"collector_url"`
	Uptime       int64  `json:"uptime_seconds"`
}

// Command describes a registered slash command.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Argument    string `json:"argument,omitempty"`
}

// Completion is one suggested argument. RunCommand is false for
// informational entries such as "No traces found".
type Completion struct {
	Label      string `json:"label"`
	NewText    string `json:"new_text"`
	RunCommand bool   `json:"run_command"`
}

// Range is a half-open byte range [Start, End) into Output.Text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Section labels a range of the output text.
type Section struct {
	Label string `json:"label"`
	Range Range  `json:"range"`
}

// Output is the result of running a command.
type Output struct {
	Text     string    `json:"text"`
	Sections []Section `json:"sections"`
}

type runBody struct {
	Args []string `json:"args"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}
