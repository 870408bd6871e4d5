// Package httpapi exposes the cached question answering service over
// HTTP: the answer endpoint, cache status and maintenance operations,
// a retrieval debug probe, and the standard health endpoints.
package httpapi
