package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashita-ai/fpxtrace/internal/collector"
	"github.com/ashita-ai/fpxtrace/internal/command"
	"github.com/ashita-ai/fpxtrace/internal/model"
)

// CommandRunner is the host command surface. *command.Registry implements it.
type CommandRunner interface {
	Commands() []model.CommandInfo
	Complete(ctx context.Context, name string, args []string) ([]command.Completion, error)
	Run(ctx context.Context, name string, args []string) (command.Output, error)
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	commands            CommandRunner
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	collectorURL        string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	Commands            CommandRunner
	Logger              *slog.Logger
	Version             string
	CollectorURL        string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		commands:            d.Commands,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		collectorURL:        d.CollectorURL,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// HandleHealth handles GET /health. It reports on fpxtrace itself; Studio
// being down is normal and shows up on the first command instead.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		CollectorURL: h.collectorURL,
		Uptime:       int64(time.Since(h.startedAt).Seconds()),
	})
}

// HandleListCommands handles GET /v1/commands.
func (h *Handlers) HandleListCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.commands.Commands())
}

// HandleCompletions handles GET /v1/commands/{name}/completions.
// Repeated ?arg= parameters are passed through as the typed arguments.
func (h *Handlers) HandleCompletions(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	args := r.URL.Query()["arg"]

	completions, err := h.commands.Complete(r.Context(), name, args)
	if err != nil {
		h.writeCommandError(w, r, name, err)
		return
	}
	writeJSON(w, r, http.StatusOK, completions)
}

// HandleRunCommand handles POST /v1/commands/{name}/run.
func (h *Handlers) HandleRunCommand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBodyBytes)
	var req model.RunCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodeInvalidInput, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	out, err := h.commands.Run(r.Context(), name, req.Args)
	if err != nil {
		h.writeCommandError(w, r, name, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// writeCommandError maps command surface errors onto HTTP statuses.
func (h *Handlers) writeCommandError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidArgument):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
	case collector.IsDecode(err):
		h.logger.WarnContext(r.Context(), "studio returned invalid JSON", "command", name, "error", err)
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstreamInvalid, err.Error())
	case collector.IsFetch(err):
		h.logger.WarnContext(r.Context(), "studio request failed", "command", name, "error", err)
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstreamUnavailable, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "command failed", "command", name, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "command failed")
	}
}
