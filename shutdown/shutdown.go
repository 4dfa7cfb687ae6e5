package shutdown

import (
	"context"
	"errors"
	"time"
)

// Common errors.
var (
	// ErrTimeout indicates shutdown did not complete within the timeout.
	ErrTimeout = errors.New("shutdown timeout exceeded")

	// ErrHandlerFailed indicates one or more handlers failed during shutdown.
	ErrHandlerFailed = errors.New("one or more handlers failed")
)

// Phases for the canonical teardown order of a registry host. Lower phases
// run first.
const (
	// PhaseTick stops tick sources, so no flush races the teardown.
	PhaseTick = 10

	// PhaseFlush drains the deferred write queue one last time.
	PhaseFlush = 20

	// PhaseRegistry closes registries; waiters unblock here.
	PhaseRegistry = 30

	// PhaseBridge stops change-event publishing.
	PhaseBridge = 40

	// PhaseBus closes buses, after the last events went out.
	PhaseBus = 50
)

// Handler is implemented by components that need graceful shutdown. The
// context is canceled when the shutdown timeout is reached.
type Handler interface {
	OnShutdown(ctx context.Context) error
}

// Func adapts a plain function to Handler.
type Func func(ctx context.Context) error

// OnShutdown implements Handler.
func (f Func) OnShutdown(ctx context.Context) error {
	return f(ctx)
}

// HandlerResult is the outcome of one handler.
type HandlerResult struct {
	// Name of the handler.
	Name string

	// Phase the handler was registered with.
	Phase int

	// Duration how long the handler took.
	Duration time.Duration

	// Err is any error the handler returned.
	Err error
}

// Result is the complete shutdown outcome.
type Result struct {
	// TotalDuration of the entire shutdown.
	TotalDuration time.Duration

	// Results for each handler, in execution order.
	Results []HandlerResult

	// Err is the overall error (nil if all handlers succeeded).
	Err error
}

// FailedHandlers returns the names of handlers that failed.
func (r *Result) FailedHandlers() []string {
	var failed []string
	for _, hr := range r.Results {
		if hr.Err != nil {
			failed = append(failed, hr.Name)
		}
	}
	return failed
}

// Config configures the shutdown coordinator.
type Config struct {
	// DefaultTimeout is used when ShutdownWithTimeout is called with zero.
	// Default: 30 seconds
	DefaultTimeout time.Duration

	// DefaultPhase is assigned to handlers registered without a phase;
	// it sits after the canonical phases.
	// Default: 100
	DefaultPhase int

	// ContinueOnError keeps shutting down when a handler fails.
	// Default: true
	ContinueOnError bool

	// OnProgress is called as each handler completes. Useful for logging.
	OnProgress func(result HandlerResult)
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout:  30 * time.Second,
		DefaultPhase:    100,
		ContinueOnError: true,
	}
}

// registration holds a registered handler with its metadata.
type registration struct {
	name    string
	handler Handler
	phase   int
}
