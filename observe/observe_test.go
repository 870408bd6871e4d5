package observe

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "valid minimal",
			cfg:  Config{ServiceName: "ragcache"},
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "ragcache",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin"},
			},
			wantErr: true,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "ragcache",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: true,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "ragcache",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "ragcache",
				Logging:     LoggingConfig{Enabled: true, Level: "verbose"},
			},
			wantErr: true,
		},
		{
			name: "full valid",
			cfg: Config{
				ServiceName: "ragcache",
				Version:     "1.0.0",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "info"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewObserverDisabled(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{ServiceName: "ragcache-test"})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}

	if obs.Tracer() == nil {
		t.Error("Tracer() returned nil")
	}
	if obs.Meter() == nil {
		t.Error("Meter() returned nil")
	}
	if obs.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if obs.Metrics() == nil {
		t.Error("Metrics() returned nil")
	}

	// No-op providers should not break any recording path.
	spanCtx, span := obs.Tracer().StartSpan(ctx, "rag.answer")
	if spanCtx == nil {
		t.Error("StartSpan returned nil context")
	}
	obs.Tracer().EndSpan(span, nil)

	obs.Metrics().RecordLookup(ctx, true)
	obs.Metrics().RecordPipeline(ctx, 25*time.Millisecond, 4, 2, nil)

	if err := obs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestNewObserverEnabled(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{
		ServiceName: "ragcache-test",
		Version:     "0.1.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "error"},
	})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}

	_, span := obs.Tracer().StartSpan(ctx, "cache.lookup")
	obs.Tracer().EndSpan(span, context.Canceled)

	obs.Metrics().RecordLookup(ctx, false)
	obs.Metrics().RecordPipeline(ctx, 100*time.Millisecond, 0, 0, context.Canceled)

	if err := obs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
