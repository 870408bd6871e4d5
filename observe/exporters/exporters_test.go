package exporters

import (
	"context"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"stdout", false},
		{"none", false},
		{"", false},
		{"zipkin", true},
	}

	for _, tt := range tests {
		t.Run("exporter_"+tt.name, func(t *testing.T) {
			exp, err := NewTracingExporter(context.Background(), tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTracingExporter(%q) expected error, got nil", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTracingExporter(%q) unexpected error: %v", tt.name, err)
			}
			if exp == nil {
				t.Fatalf("NewTracingExporter(%q) returned nil exporter", tt.name)
			}
		})
	}
}

func TestNewTracingExporterOTLPRequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil {
		t.Fatal("expected error when OTLP endpoint is not configured")
	}
}

func TestNewMetricsReader(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"stdout", false},
		{"prometheus", false},
		{"none", false},
		{"", false},
		{"statsd", true},
	}

	for _, tt := range tests {
		t.Run("reader_"+tt.name, func(t *testing.T) {
			reader, err := NewMetricsReader(context.Background(), tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewMetricsReader(%q) expected error, got nil", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsReader(%q) unexpected error: %v", tt.name, err)
			}
			if reader == nil {
				t.Fatalf("NewMetricsReader(%q) returned nil reader", tt.name)
			}
			_ = reader.Shutdown(context.Background())
		})
	}
}
