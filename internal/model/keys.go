package model

// Attribute keys emitted by the Studio collector. These must match the
// collector's schema exactly.
const (
	AttrHTTPRequestMethod      = "http.request.method"
	AttrFPXRequestPathname     = "fpx.http.request.pathname"
	AttrHTTPResponseStatusCode = "http.response.status_code"

	// AttrFPXRequestEnv holds the environment variables captured in the
	// instrumented process. It is always dropped before display.
	AttrFPXRequestEnv = "fpx.http.request.env"

	AttrHTTPAuthorization        = "http.request.header.authorization"
	AttrHTTPNeonConnectionString = "http.request.header.neon-connection-string"
)

// RequestSpanName is the name the collector gives to the root span of an
// incoming HTTP request.
const RequestSpanName = "request"
