// Package observe provides structured logging, tracing, and metrics for
// the RAG cache service, built on OpenTelemetry.
//
// All telemetry is optional: every constructor has a no-op counterpart so
// library packages can instrument unconditionally.
package observe
