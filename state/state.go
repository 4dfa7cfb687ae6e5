package state

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quembly/statekit/diag"
	"github.com/quembly/statekit/logging"
	"github.com/quembly/statekit/tick"
)

// Common errors.
var (
	ErrExists      = errors.New("state already exists")
	ErrNotFound    = errors.New("state not found")
	ErrLocked      = errors.New("state locked")
	ErrClosed      = errors.New("registry closed")
	ErrNilCallback = errors.New("nil change callback")
)

// ChangeFunc is invoked with the new and previous value of a state.
type ChangeFunc func(newValue, oldValue any)

// Event describes one accepted write, as seen by observers.
type Event struct {
	// Name of the state that changed.
	Name string

	// NewValue is the value now stored.
	NewValue any

	// OldValue is the value before the write. For queued writes this is
	// the value captured when the change was first queued.
	OldValue any

	// Queued is true when the write was applied by a queue flush.
	Queued bool

	// Time the write was applied.
	Time time.Time
}

// slot is one named state entry.
type slot struct {
	value  any
	locked bool
}

// pendingChange is a queued write awaiting the next flush. oldValue is
// captured at first queue insertion and kept across coalesced updates.
type pendingChange struct {
	oldValue any
	newValue any
}

// Registry is a named-state registry. All methods are safe for concurrent
// use; see the package documentation for the dispatch model.
type Registry struct {
	id     string
	logger *logging.Logger
	diags  diag.Handler
	source tick.Source

	mu       sync.RWMutex
	states   map[string]*slot
	watchers map[string][]*Subscription
	pending  map[string]*pendingChange
	order    []string

	obsMu     sync.RWMutex
	observers []func(Event)

	closed   atomic.Bool
	done     chan struct{}
	loopDone chan struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger diagnostics and activity are written to.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithName sets a readable instance name used to tag log lines. Defaults to
// a short random ID.
func WithName(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.id = name
		}
	}
}

// WithDiagnosticHandler installs a handler receiving structured diagnostics
// for every rejected operation and recovered callback panic. The handler
// runs inline on the operation's goroutine and must not call back into the
// registry.
func WithDiagnosticHandler(h diag.Handler) Option {
	return func(r *Registry) {
		r.diags = h
	}
}

// WithTickSource subscribes the registry to a tick source at construction.
// Every delivered tick flushes the deferred write queue. The registry does
// not take ownership of the source; stopping it remains the host's job.
func WithTickSource(src tick.Source) Option {
	return func(r *Registry) {
		r.source = src
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		id:       uuid.NewString()[:8],
		logger:   logging.New(),
		states:   make(map[string]*slot),
		watchers: make(map[string][]*Subscription),
		pending:  make(map[string]*pendingChange),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.WithComponent("state").WithRegistry(r.id)

	if r.source != nil {
		r.loopDone = make(chan struct{})
		go r.flushLoop()
	}

	return r
}

// ID returns the registry instance tag used in log lines.
func (r *Registry) ID() string {
	return r.id
}

// Names returns the names of all live states, in no particular order.
func (r *Registry) Names() []string {
	if r.closed.Load() {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.states))
	for name := range r.states {
		names = append(names, name)
	}
	return names
}

// Observe registers an observer invoked inline for every accepted write,
// immediate or flushed. Observers run on the writer's goroutine after the
// store is updated; they must be fast and must not panic. Events between
// concurrent writers carry their own value pairs but may arrive in either
// order.
func (r *Registry) Observe(fn func(Event)) {
	if fn == nil {
		return
	}
	r.obsMu.Lock()
	r.observers = append(r.observers, fn)
	r.obsMu.Unlock()
}

// Close shuts down the registry: the tick loop stops, pending WaitForChange
// calls unblock with ErrClosed, and subsequent operations fail with
// ErrClosed. Callbacks already scheduled may still run. Idempotent.
func (r *Registry) Close() error {
	if r.closed.Swap(true) {
		return nil
	}

	close(r.done)
	if r.loopDone != nil {
		<-r.loopDone
	}

	// Maps stay allocated: operations racing the closed flag may still be
	// inside the lock and must not hit nil maps.
	return nil
}

// raise reports a guard rejection through the logger and the diagnostic
// handler.
func (r *Registry) raise(code diag.Code, name, op string) {
	r.logger.Rejected(op, name, code.String())
	if r.diags != nil {
		d := diag.New(code, name)
		d.Detail = op
		r.diags(d)
	}
}

// raisePanic reports a recovered change-callback panic.
func (r *Registry) raisePanic(name string, recovered any) {
	r.logger.WatcherPanic(name, recovered)
	if r.diags != nil {
		r.diags(diag.Newf(diag.CodeWatcherPanic, name, "%v", recovered))
	}
}

// emit delivers events to all registered observers, in order.
func (r *Registry) emit(events ...Event) {
	r.obsMu.RLock()
	obs := r.observers
	r.obsMu.RUnlock()

	if len(obs) == 0 {
		return
	}
	for _, e := range events {
		for _, fn := range obs {
			fn(e)
		}
	}
}
