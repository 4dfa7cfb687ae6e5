package telemetry

import (
	"context"
	"strings"
	"testing"
)

func TestInit_NoEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	_, err := Init(context.Background(), Config{ServiceName: "test"})
	if err == nil {
		t.Fatal("expected error without an endpoint")
	}
	if !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("error should mention the endpoint: %v", err)
	}
}

func TestInit_UnknownProtocol(t *testing.T) {
	_, err := Init(context.Background(), Config{
		ServiceName: "test",
		Endpoint:    "localhost:4317",
		Protocol:    "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected error for unknown protocol")
	}
	if !strings.Contains(err.Error(), "unknown protocol") {
		t.Errorf("error = %v", err)
	}
}

func TestInit_EndpointFromEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	// The endpoint resolves from the environment; the bogus protocol then
	// fails, proving resolution happened first.
	_, err := Init(context.Background(), Config{Protocol: "bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown protocol") {
		t.Errorf("error = %v", err)
	}
}
