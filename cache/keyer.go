package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gastwerk/ragcache/rag"
)

// Namespace prefixes every cache key so RAG entries never collide with
// unrelated keys in a shared store.
const Namespace = "rag:query:"

// Keyer generates deterministic cache keys from a query and its context.
//
// Contract:
// - Determinism: the same normalized query and canonicalized context must
//   produce the same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key. The query is validated first; empty or
	// whitespace-only queries are rejected.
	Key(query string, qctx rag.Context) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: rag:query:<hash>
// where hash is the first 16 hex characters of
// SHA-256(normalized query + canonical context). The truncation to 64
// bits is a compactness/collision trade-off; callers needing stronger
// guarantees can supply their own Keyer over the full digest.
func (k *DefaultKeyer) Key(query string, qctx rag.Context) (string, error) {
	if err := rag.ValidateQuery(query); err != nil {
		return "", err
	}

	canonical, err := canonicalizeContext(qctx)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize context: %w", err)
	}

	hash := sha256.Sum256([]byte(normalizeQuery(query) + canonical))
	return Namespace + hex.EncodeToString(hash[:8]), nil
}

// normalizeQuery lowercases, trims, and collapses internal whitespace so
// that casing and spacing never split cache entries.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// canonicalizeContext serializes the context as a JSON array of
// [name, value] pairs sorted by name. Both a nil and an explicitly empty
// context serialize to the empty string and therefore hash identically.
func canonicalizeContext(qctx rag.Context) (string, error) {
	if len(qctx) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(qctx))
	for k := range qctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return "", err
		}
		valJSON, err := json.Marshal(qctx[k])
		if err != nil {
			return "", err
		}
		b.WriteByte('[')
		b.Write(keyJSON)
		b.WriteByte(',')
		b.Write(valJSON)
		b.WriteByte(']')
	}
	b.WriteByte(']')

	return b.String(), nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
