// Package resilience provides the request guards used by the HTTP layer:
// a per-request timeout and a token bucket rate limiter for the answer
// endpoint.
//
// Retries are deliberately absent. The cache-aside path treats a store
// failure as a miss and a pipeline failure as the caller's problem, so a
// retry here would only mask upstream errors and double provider cost.
package resilience
