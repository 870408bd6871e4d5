// Package auth guards the administrative surface of the cache service.
//
// Regular answer traffic needs an API key; maintenance operations
// (clearing or invalidating the cache, debug probes) additionally require
// a JWT bearer token carrying the admin role. The package is
// protocol-agnostic except for the HTTP middleware in middleware.go.
package auth
