// Package command implements the host command surface: argument completion
// and execution for the editor slash commands.
package command

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ashita-ai/fpxtrace/internal/model"
	"github.com/ashita-ai/fpxtrace/internal/service/traces"
)

// TraceCommand is the name of the trace command.
const TraceCommand = "trace"

// ErrUnknownCommand is returned for a command name that is not registered.
var ErrUnknownCommand = errors.New("unknown slash command")

// ErrNoTraceID is returned by Run when no trace id argument was given.
// It matches model.ErrInvalidArgument.
var ErrNoTraceID error = noTraceIDError{}

type noTraceIDError struct{}

func (noTraceIDError) Error() string        { return "no trace id provided" }
func (noTraceIDError) Is(target error) bool { return target == model.ErrInvalidArgument }

// TraceService lists and renders traces. *traces.Service implements it.
type TraceService interface {
	List(ctx context.Context) ([]traces.Choice, error)
	Render(ctx context.Context, traceID string) (traces.Rendered, error)
}

// Completion is one suggested argument. Choosing it replaces the argument
// with NewText; RunCommand reports whether the host should then run the
// command immediately.
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

type handler struct {
	info     model.CommandInfo
	complete func(ctx context.Context, args []string) ([]Completion, error)
	run      func(ctx context.Context, args []string) (Output, error)
}

// Registry dispatches commands by name.
type Registry struct {
	handlers map[string]handler
}

// New registers the trace command backed by svc.
func New(svc TraceService) *Registry {
	r := &Registry{handlers: make(map[string]handler)}
	t := traceCommand{svc: svc}
	r.handlers[TraceCommand] = handler{
		info: model.CommandInfo{
			Name:        TraceCommand,
			Description: "Insert a redacted Fiberplane Studio trace",
			Argument:    "trace_id",
		},
		complete: t.complete,
		run:      t.run,
	}
	return r
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []model.CommandInfo {
	out := make([]model.CommandInfo, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h.info)
	}
	slices.SortFunc(out, func(a, b model.CommandInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Complete suggests arguments for the named command. An unknown name fails
// with ErrUnknownCommand before anything is fetched.
func (r *Registry) Complete(ctx context.Context, name string, args []string) ([]Completion, error) {
	h, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return h.complete(ctx, args)
}

// Run executes the named command.
func (r *Registry) Run(ctx context.Context, name string, args []string) (Output, error) {
	h, err := r.lookup(name)
	if err != nil {
		return Output{}, err
	}
	return h.run(ctx, args)
}

func (r *Registry) lookup(name string) (handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return handler{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return h, nil
}

type traceCommand struct {
	svc TraceService
}

// complete ignores args; the host filters the returned list as the user types.
func (c traceCommand) complete(ctx context.Context, _ []string) ([]Completion, error) {
	choices, err := c.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Completion, len(choices))
	for i, ch := range choices {
		out[i] = Completion{Label: ch.Label, NewText: ch.Selector, RunCommand: ch.Actionable}
	}
	return out, nil
}

func (c traceCommand) run(ctx context.Context, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, ErrNoTraceID
	}
	rendered, err := c.svc.Render(ctx, args[0])
	if err != nil {
		return Output{}, err
	}
	return Output{
		Text: rendered.Text,
		Sections: []Section{{
			Label: rendered.Label,
			Range: Range{Start: 0, End: len(rendered.Text)},
		}},
	}, nil
}
