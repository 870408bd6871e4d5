package cache

import (
	"context"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Store is the contract over a durable key-value store with per-entry
// expiration. Values are opaque serialized records; the store never
// interprets them.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use by any
//   number of handler instances; no client-side locking is performed.
// - Get returns ErrNotFound for an absent or expired key. Any other
//   error is a store failure; callers decide how to degrade.
// - Set rejects invalid keys (ValidateKey) before any I/O; with ttl<=0
//   it is a no-op (no caching).
// - Delete is idempotent; deleting an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Keys lists all live keys under the given prefix. Ordering is
	// implementation-defined.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
