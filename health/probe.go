package health

import (
	"context"
	"fmt"
)

// ProbeChecker reports availability of the cache store through a
// write-then-read probe. The probe function answers "is the store
// usable", not "are entries correct"; a false answer degrades cached
// traffic to direct pipeline runs rather than failing requests.
type ProbeChecker struct {
	name  string
	probe func(ctx context.Context) bool
}

// NewProbeChecker creates a checker around a boolean probe.
func NewProbeChecker(name string, probe func(ctx context.Context) bool) *ProbeChecker {
	return &ProbeChecker{name: name, probe: probe}
}

// Name returns the name of this checker.
func (p *ProbeChecker) Name() string {
	return p.name
}

// Check runs the probe.
func (p *ProbeChecker) Check(ctx context.Context) Result {
	if p.probe(ctx) {
		return Healthy("probe round-trip succeeded")
	}
	return Unhealthy("probe round-trip failed", ErrCheckFailed)
}

// StatsChecker reports vector index availability by fetching its stats.
// An unreachable index makes the service unable to answer fresh queries,
// so it maps to unhealthy rather than degraded.
type StatsChecker struct {
	name  string
	stats func(ctx context.Context) (map[string]any, error)
}

// NewStatsChecker creates a checker around a stats fetch.
func NewStatsChecker(name string, stats func(ctx context.Context) (map[string]any, error)) *StatsChecker {
	return &StatsChecker{name: name, stats: stats}
}

// Name returns the name of this checker.
func (s *StatsChecker) Name() string {
	return s.name
}

// Check fetches the stats.
func (s *StatsChecker) Check(ctx context.Context) Result {
	details, err := s.stats(ctx)
	if err != nil {
		return Unhealthy(fmt.Sprintf("stats fetch failed: %v", err), err)
	}
	return Healthy("reachable").WithDetails(details)
}

var (
	_ Checker = (*ProbeChecker)(nil)
	_ Checker = (*StatsChecker)(nil)
)
