package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gastwerk/ragcache/observe"
	"github.com/gastwerk/ragcache/rag"
)

// Orchestrator is the retrieval pipeline the coordinator wraps.
type Orchestrator interface {
	Answer(ctx context.Context, query string, qctx rag.Context) (*rag.Response, error)
}

// Coordinator implements the cache-aside pattern around the retrieval
// pipeline: check the store first, populate it on miss.
//
// Contract:
// - Store failures are absorbed: a failed read is a miss, a failed write
//   is logged and swallowed. The primary request path never fails
//   because the cache is unavailable.
// - Pipeline failures propagate untouched and are never cached.
// - No cross-instance coordination: concurrent misses for the same key
//   on different instances each compute; the store's last write wins.
type Coordinator struct {
	store  Store
	keyer  Keyer
	orch   Orchestrator
	policy Policy
	log    observe.Logger
	meter  observe.Metrics

	group singleflight.Group

	// now is swapped in tests to control hit timestamps.
	now func() time.Time
}

// NewCoordinator creates a Coordinator. A nil keyer defaults to
// DefaultKeyer; nil logger and metrics default to no-ops.
func NewCoordinator(store Store, keyer Keyer, orch Orchestrator, policy Policy, log observe.Logger, meter observe.Metrics) *Coordinator {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if log == nil {
		log = observe.NewNopLogger()
	}
	if meter == nil {
		meter = observe.NewNopMetrics()
	}

	return &Coordinator{
		store:  store,
		keyer:  keyer,
		orch:   orch,
		policy: policy,
		log:    log,
		meter:  meter,
		now:    time.Now,
	}
}

// Answer resolves the query through the cache using the policy TTL.
func (c *Coordinator) Answer(ctx context.Context, query string, qctx rag.Context) (*rag.Response, error) {
	return c.AnswerWithTTL(ctx, query, qctx, 0)
}

// AnswerWithTTL resolves the query through the cache, storing any fresh
// result with the given TTL (0 means the policy default, clamped to the
// policy maximum).
func (c *Coordinator) AnswerWithTTL(ctx context.Context, query string, qctx rag.Context, ttl time.Duration) (*rag.Response, error) {
	key, err := c.keyer.Key(query, qctx)
	if err != nil {
		// Validation failure, before any I/O.
		return nil, err
	}

	if !c.policy.ShouldCache() {
		return c.orch.Answer(ctx, query, qctx)
	}

	if resp, ok := c.lookup(ctx, key); ok {
		c.meter.RecordLookup(ctx, true)
		return resp, nil
	}
	c.meter.RecordLookup(ctx, false)

	if c.policy.SingleFlight {
		// Concurrent misses for the same key share one pipeline run.
		// The leader's context drives the shared call; coalesced
		// callers get a copy of its result.
		v, err, _ := c.group.Do(key, func() (any, error) {
			return c.compute(ctx, key, query, qctx, ttl)
		})
		if err != nil {
			return nil, err
		}
		shared := v.(*rag.Response)
		resp := *shared
		return &resp, nil
	}

	return c.compute(ctx, key, query, qctx, ttl)
}

// lookup reads the store. Any store failure is degraded to a miss.
func (c *Coordinator) lookup(ctx context.Context, key string) (*rag.Response, bool) {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.Warn(ctx, "cache read failed, treating as miss",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, false
	}

	var resp rag.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.log.Warn(ctx, "cached entry corrupted, treating as miss",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, false
	}

	// Only the presentation fields change on a hit; answer, sources,
	// metadata, and original_timestamp stay exactly as stored.
	resp.Cached = true
	resp.CachedAt = c.now().UTC()
	return &resp, true
}

// compute runs the pipeline and stores the result best-effort.
func (c *Coordinator) compute(ctx context.Context, key, query string, qctx rag.Context, ttl time.Duration) (*rag.Response, error) {
	fresh, err := c.orch.Answer(ctx, query, qctx)
	if err != nil {
		// Pipeline failures are never cached.
		return nil, err
	}

	fresh.Cached = false
	if fresh.OriginalTimestamp.IsZero() {
		fresh.OriginalTimestamp = c.now().UTC()
	}

	effective := c.policy.EffectiveTTL(ttl)
	if effective > 0 {
		data, err := json.Marshal(fresh)
		if err != nil {
			c.log.Warn(ctx, "failed to encode response for caching",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return fresh, nil
		}
		if err := c.store.Set(ctx, key, data, effective); err != nil {
			c.log.Warn(ctx, "cache write failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	return fresh, nil
}
