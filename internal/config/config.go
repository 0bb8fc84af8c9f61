// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ashita-ai/fpxtrace/internal/collector"
	"github.com/ashita-ai/fpxtrace/internal/model"
)

// Transport selects which MCP transports the process serves.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
	TransportBoth  Transport = "both"
)

// ServesStdio reports whether MCP is served over stdin/stdout.
func (t Transport) ServesStdio() bool { return t == TransportStdio || t == TransportBoth }

// ServesHTTP reports whether the HTTP server is started.
func (t Transport) ServesHTTP() bool { return t == TransportHTTP || t == TransportBoth }

// AllSpans is the FPX_SUMMARY_SPAN value that lists every span.
const AllSpans = "*"

// Config holds all application configuration.
type Config struct {
	// Collector settings.
	StudioURL        string
	CollectorTimeout time.Duration

	// Transport settings.
	Transport Transport

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration // 0 disables; the MCP GET stream is long-lived.
	MaxRequestBodyBytes int64

	// Trace listing and redaction.
	SummarySpan    string // Span name to list; empty lists every span.
	RedactMaskKeys []string
	RedactDropKeys []string

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string
	OTELInsecure bool

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
// Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		StudioURL:           envStr("FPX_STUDIO_URL", collector.DefaultBaseURL),
		CollectorTimeout:    l.duration("FPX_COLLECTOR_TIMEOUT", collector.DefaultTimeout),
		Transport:           Transport(strings.ToLower(envStr("FPX_TRANSPORT", string(TransportStdio)))),
		Port:                l.int("FPX_PORT", 8789),
		ReadTimeout:         l.duration("FPX_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        l.duration("FPX_WRITE_TIMEOUT", 0),
		MaxRequestBodyBytes: int64(l.int("FPX_MAX_REQUEST_BODY_BYTES", 64*1024)),
		SummarySpan:         envStr("FPX_SUMMARY_SPAN", model.RequestSpanName),
		RedactMaskKeys:      envList("FPX_REDACT_MASK_KEYS"),
		RedactDropKeys:      envList("FPX_REDACT_DROP_KEYS"),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "fpxtrace"),
		OTELInsecure:        l.bool("FPX_OTEL_INSECURE", false),
		LogLevel:            strings.ToLower(envStr("FPX_LOG_LEVEL", "info")),
	}
	if cfg.SummarySpan == AllSpans {
		cfg.SummarySpan = ""
	}

	if len(l.errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(l.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.StudioURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("FPX_STUDIO_URL=%q must be an http(s) URL", c.StudioURL))
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP, TransportBoth:
	default:
		errs = append(errs, fmt.Errorf("FPX_TRANSPORT=%q must be one of stdio, http, both", c.Transport))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("FPX_PORT=%d is out of range", c.Port))
	}
	if c.CollectorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FPX_COLLECTOR_TIMEOUT must be positive"))
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("FPX_MAX_REQUEST_BODY_BYTES must be positive"))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("FPX_LOG_LEVEL=%q must be one of debug, info, warn, error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// loader accumulates parse errors across env lookups.
type loader struct {
	errs []error
}

func (l *loader) int(key string, defaultVal int) int {
	v, err := envInt(key, defaultVal)
	if err != nil {
		l.errs = append(l.errs, err)
	}
	return v
}

func (l *loader) bool(key string, defaultVal bool) bool {
	v, err := envBool(key, defaultVal)
	if err != nil {
		l.errs = append(l.errs, err)
	}
	return v
}

func (l *loader) duration(key string, defaultVal time.Duration) time.Duration {
	v, err := envDuration(key, defaultVal)
	if err != nil {
		l.errs = append(l.errs, err)
	}
	return v
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}

// envList splits a comma-separated variable, dropping blank entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
