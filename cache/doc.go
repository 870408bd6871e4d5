// Package cache provides deterministic caching for RAG query responses.
//
// It provides a durable key-value Store contract with memory, Redis, and
// SQLite implementations, SHA-256-based fingerprinting of query+context
// pairs, a cache-aside Coordinator wrapping the retrieval pipeline, and
// maintenance operations (stats, invalidation, clear-all, health probe).
package cache
