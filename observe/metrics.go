package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache and pipeline instruments.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one cache lookup and whether it hit.
	RecordLookup(ctx context.Context, hit bool)

	// RecordPipeline records a retrieval pipeline run with its duration,
	// document counts, and error status.
	RecordPipeline(ctx context.Context, duration time.Duration, found, used int, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	lookupCount    metric.Int64Counter
	pipelineCount  metric.Int64Counter
	pipelineErrors metric.Int64Counter
	durationHist   metric.Float64Histogram
	docsUsedHist   metric.Int64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookupCount, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Total number of cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	pipelineCount, err := meter.Int64Counter(
		"rag.pipeline.total",
		metric.WithDescription("Total number of retrieval pipeline runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	pipelineErrors, err := meter.Int64Counter(
		"rag.pipeline.errors",
		metric.WithDescription("Total number of retrieval pipeline failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"rag.pipeline.duration_ms",
		metric.WithDescription("Retrieval pipeline duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	docsUsedHist, err := meter.Int64Histogram(
		"rag.pipeline.documents_used",
		metric.WithDescription("Documents above the relevance threshold per run"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		lookupCount:    lookupCount,
		pipelineCount:  pipelineCount,
		pipelineErrors: pipelineErrors,
		durationHist:   durationHist,
		docsUsedHist:   docsUsedHist,
	}, nil
}

// RecordLookup records one cache lookup.
func (m *metricsImpl) RecordLookup(ctx context.Context, hit bool) {
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("cache.hit", hit),
	))
}

// RecordPipeline records one retrieval pipeline run.
func (m *metricsImpl) RecordPipeline(ctx context.Context, duration time.Duration, found, used int, err error) {
	opt := metric.WithAttributes(
		attribute.Bool("error", err != nil),
	)

	m.pipelineCount.Add(ctx, 1, opt)
	if err != nil {
		m.pipelineErrors.Add(ctx, 1, opt)
		return
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
	m.docsUsedHist.Record(ctx, int64(used), metric.WithAttributes(
		attribute.Int("documents.found", found),
	))
}

// NewNopMetrics returns a Metrics that discards everything.
func NewNopMetrics() Metrics {
	return &noopMetrics{}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordLookup(ctx context.Context, hit bool) {}
func (m *noopMetrics) RecordPipeline(ctx context.Context, duration time.Duration, found, used int, err error) {
}
