// Package health provides component health checks and HTTP probe handlers
// for the RAG cache service: a cache store probe, a vector index probe,
// and an aggregator that combines them into liveness and readiness
// endpoints.
package health
