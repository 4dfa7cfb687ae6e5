// Package config loads host configuration: built-in defaults, then an
// optional TOML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/quembly/statekit/bus"
	"github.com/quembly/statekit/logging"
	"github.com/quembly/statekit/telemetry"
)

// Duration decodes from TOML strings and environment values like "50ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for both decoders.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config is the full host configuration.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Bus      BusConfig      `toml:"bus"`
	Bridge   BridgeConfig   `toml:"bridge"`
	Tracing  TracingConfig  `toml:"tracing"`
}

// RegistryConfig configures the registry and its flush schedule.
type RegistryConfig struct {
	// Name tags log lines of this instance. Empty picks a random tag.
	Name string `toml:"name" env:"STATEKIT_REGISTRY_NAME"`

	// LogLevel is DEBUG, INFO, WARN or ERROR.
	LogLevel string `toml:"log_level" env:"STATEKIT_LOG_LEVEL"`

	// FlushInterval drives the deferred write queue. Zero disables the
	// interval source; the host then flushes on its own schedule.
	FlushInterval Duration `toml:"flush_interval" env:"STATEKIT_FLUSH_INTERVAL"`
}

// BusConfig selects and sizes the message bus backend.
type BusConfig struct {
	// Backend is "memory" or "nats".
	Backend string `toml:"backend" env:"STATEKIT_BUS_BACKEND"`

	// BufferSize for subscription channels.
	BufferSize int `toml:"buffer_size" env:"STATEKIT_BUS_BUFFER_SIZE"`

	// URL of the NATS server. Empty uses the library default.
	URL string `toml:"url" env:"STATEKIT_BUS_URL"`
}

// BridgeConfig configures change-event publishing.
type BridgeConfig struct {
	Enabled       bool   `toml:"enabled" env:"STATEKIT_BRIDGE_ENABLED"`
	SubjectPrefix string `toml:"subject_prefix" env:"STATEKIT_BRIDGE_SUBJECT_PREFIX"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled  bool   `toml:"enabled" env:"STATEKIT_TRACING_ENABLED"`
	Endpoint string `toml:"endpoint" env:"STATEKIT_TRACING_ENDPOINT"`
	Protocol string `toml:"protocol" env:"STATEKIT_TRACING_PROTOCOL"`
	Insecure bool   `toml:"insecure" env:"STATEKIT_TRACING_INSECURE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			LogLevel:      "INFO",
			FlushInterval: Duration{50 * time.Millisecond},
		},
		Bus: BusConfig{
			Backend:    "memory",
			BufferSize: 256,
		},
		Bridge: BridgeConfig{
			Enabled:       true,
			SubjectPrefix: "state",
		},
		Tracing: TracingConfig{
			Protocol: "grpc",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (may
// be empty to skip), and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can accept.
func (c Config) Validate() error {
	switch c.Registry.LogLevel {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid log level %q", c.Registry.LogLevel)
	}
	if c.Registry.FlushInterval.Duration < 0 {
		return fmt.Errorf("negative flush interval %s", c.Registry.FlushInterval.Duration)
	}

	switch c.Bus.Backend {
	case "memory", "nats":
	default:
		return fmt.Errorf("unknown bus backend %q", c.Bus.Backend)
	}
	if c.Bus.BufferSize <= 0 {
		return fmt.Errorf("bus buffer size must be positive, got %d", c.Bus.BufferSize)
	}

	switch c.Tracing.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("unknown tracing protocol %q", c.Tracing.Protocol)
	}

	return nil
}

// Logger builds a logger at the configured level.
func (c Config) Logger() *logging.Logger {
	l := logging.New()
	l.SetLevel(logging.ParseLevel(c.Registry.LogLevel))
	return l
}

// Connect builds the configured message bus.
func (c BusConfig) Connect() (bus.MessageBus, error) {
	switch c.Backend {
	case "memory":
		return bus.NewMemoryBus(bus.Config{BufferSize: c.BufferSize}), nil
	case "nats":
		nc := bus.DefaultNATSConfig()
		nc.BufferSize = c.BufferSize
		if c.URL != "" {
			nc.URL = c.URL
		}
		return bus.NewNATSBus(nc)
	default:
		return nil, fmt.Errorf("unknown bus backend %q", c.Backend)
	}
}

// Telemetry maps the tracing section onto a telemetry provider config.
func (c TracingConfig) Telemetry(serviceName string) telemetry.Config {
	return telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    c.Endpoint,
		Protocol:    c.Protocol,
		Insecure:    c.Insecure,
	}
}
