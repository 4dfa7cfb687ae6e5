package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/quembly/statekit/bus"
	"github.com/quembly/statekit/logging"
	"github.com/quembly/statekit/state"
)

// Common errors.
var (
	ErrNoRegistry = errors.New("nil registry")
	ErrNoBus      = errors.New("nil message bus")
)

// Config configures a Bridge and its feeds.
type Config struct {
	// SubjectPrefix is the prefix for change-event subjects.
	// Default: "state"
	SubjectPrefix string

	// BufferSize for feed channels.
	// Default: 16
	BufferSize int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SubjectPrefix: "state",
		BufferSize:    16,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = def.SubjectPrefix
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	return c
}

// Subject returns the bus subject carrying events for one state name.
func Subject(prefix, name string) string {
	if prefix == "" {
		prefix = DefaultConfig().SubjectPrefix
	}
	return prefix + "." + name
}

// ChangeEvent is the wire form of one accepted write.
type ChangeEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Registry is the instance tag of the publishing registry.
	Registry string `json:"registry"`

	// Name of the state that changed.
	Name string `json:"name"`

	// NewValue and OldValue are the value pair the change carried. They
	// round-trip through JSON, so consumers see decoded JSON types, not
	// the publisher's Go types.
	NewValue any `json:"new_value"`
	OldValue any `json:"old_value"`

	// Queued is true when the write was applied by a queue flush.
	Queued bool `json:"queued"`

	// Time the write was applied.
	Time time.Time `json:"time"`

	// Trace carries W3C trace context across the bus when a telemetry
	// provider is configured.
	Trace map[string]string `json:"trace,omitempty"`
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger publish failures are written to.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bridge publishes registry change events onto a message bus.
type Bridge struct {
	bus    bus.MessageBus
	config Config
	logger *logging.Logger
	tracer trace.Tracer
	tag    string

	closed atomic.Bool
}

// Attach wires a bridge to a registry. Every write the registry accepts
// from then on is published as a ChangeEvent. The bridge does not own the
// bus or the registry; closing it only stops publishing.
func Attach(reg *state.Registry, mb bus.MessageBus, cfg Config, opts ...Option) (*Bridge, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	if mb == nil {
		return nil, ErrNoBus
	}

	b := &Bridge{
		bus:    mb,
		config: cfg.withDefaults(),
		logger: logging.New(),
		tracer: otel.Tracer("statekit/bridge"),
		tag:    reg.ID(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("bridge").WithRegistry(b.tag)

	reg.Observe(b.publish)
	return b, nil
}

// publish runs inline on the writer's goroutine, so it only serializes and
// hands off to the bus; the bus buffers or drops from there.
func (b *Bridge) publish(e state.Event) {
	if b.closed.Load() {
		return
	}

	ctx, span := b.tracer.Start(context.Background(), "bridge.publish",
		trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("state.name", e.Name),
		attribute.Bool("state.queued", e.Queued),
	)

	ev := ChangeEvent{
		ID:       uuid.NewString(),
		Registry: b.tag,
		Name:     e.Name,
		NewValue: e.NewValue,
		OldValue: e.OldValue,
		Queued:   e.Queued,
		Time:     e.Time,
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if len(carrier) > 0 {
		ev.Trace = carrier
	}

	data, err := json.Marshal(ev)
	if err != nil {
		// Values are arbitrary Go types; not all of them serialize.
		b.logger.Warn("change event not serializable, dropped", map[string]interface{}{
			"state": e.Name,
			"error": err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return
	}

	subject := Subject(b.config.SubjectPrefix, e.Name)
	if err := b.bus.Publish(subject, data); err != nil {
		b.logger.Error("bus publish failed", map[string]interface{}{
			"state":   e.Name,
			"subject": subject,
			"error":   err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return
	}

	span.SetStatus(codes.Ok, "")
}

// Close stops publishing. The registry keeps the observer registered but
// events are ignored from here on. Idempotent.
func (b *Bridge) Close() error {
	b.closed.Store(true)
	return nil
}
