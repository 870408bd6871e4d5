package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound distinguishes "key absent" from a store failure: any
	// other error from Get means the store itself misbehaved.
	ErrNotFound = errors.New("cache: key not found")

	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)
