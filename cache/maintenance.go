package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/gastwerk/ragcache/observe"
	"github.com/gastwerk/ragcache/rag"
)

// healthKey is the sentinel written by the health probe. It lives outside
// the Namespace so probes never show up in stats or get swept by ClearAll.
const healthKey = "cache:health"

// healthTTL keeps probe sentinels short-lived.
const healthTTL = 60 * time.Second

// Stats summarizes the cache contents.
type Stats struct {
	TotalEntries int      `json:"total_entries"`
	SampleKeys   []string `json:"sample_keys"`
}

// Maintenance provides best-effort operational commands over the store.
// Every operation degrades instead of failing when the store is down.
type Maintenance struct {
	store Store
	keyer Keyer
	log   observe.Logger
}

// NewMaintenance creates a Maintenance. A nil keyer defaults to
// DefaultKeyer; a nil logger defaults to a no-op.
func NewMaintenance(store Store, keyer Keyer, log observe.Logger) *Maintenance {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if log == nil {
		log = observe.NewNopLogger()
	}
	return &Maintenance{store: store, keyer: keyer, log: log}
}

// Stats counts entries under the namespace and returns up to 10 sample
// keys. Store errors yield zero values.
func (m *Maintenance) Stats(ctx context.Context) Stats {
	keys, err := m.store.Keys(ctx, Namespace)
	if err != nil {
		m.log.Warn(ctx, "cache stats failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Stats{SampleKeys: []string{}}
	}

	sample := keys
	if len(sample) > 10 {
		sample = sample[:10]
	}
	return Stats{
		TotalEntries: len(keys),
		SampleKeys:   append([]string{}, sample...),
	}
}

// Invalidate removes the entry for a query+context pair. Deleting an
// absent key is not an error; store failures are logged and swallowed.
// Only query validation can fail.
func (m *Maintenance) Invalidate(ctx context.Context, query string, qctx rag.Context) error {
	key, err := m.keyer.Key(query, qctx)
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, key); err != nil {
		m.log.Warn(ctx, "cache invalidation failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	return nil
}

// ClearAll deletes every entry under the namespace and returns the count
// deleted. Enumeration failure yields 0; per-key failures are skipped.
func (m *Maintenance) ClearAll(ctx context.Context) int {
	keys, err := m.store.Keys(ctx, Namespace)
	if err != nil {
		m.log.Warn(ctx, "cache clear enumeration failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return 0
	}

	cleared := 0
	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warn(ctx, "cache clear failed for key",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		cleared++
	}

	m.log.Info(ctx, "cache cleared",
		observe.Field{Key: "cleared", Value: cleared},
	)
	return cleared
}

// HealthProbe writes a short-lived sentinel and reads it back, answering
// "is the cache available" without touching real traffic.
func (m *Maintenance) HealthProbe(ctx context.Context) bool {
	if err := m.store.Set(ctx, healthKey, []byte("ok"), healthTTL); err != nil {
		return false
	}
	value, err := m.store.Get(ctx, healthKey)
	if err != nil {
		return false
	}
	return bytes.Equal(value, []byte("ok"))
}
