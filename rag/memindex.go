package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-process vector index using cosine similarity.
// It backs local development and tests; production deployments point the
// orchestrator at a hosted index instead.
type MemoryIndex struct {
	name string

	mu   sync.RWMutex
	dim  int
	docs []memDoc
}

type memDoc struct {
	match  Match
	vector []float32
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(name string) *MemoryIndex {
	return &MemoryIndex{name: name}
}

// Upsert adds a document with its embedding. The first vector fixes the
// index dimensionality; mismatched vectors are rejected.
func (ix *MemoryIndex) Upsert(m Match, vector []float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = len(vector)
	} else if len(vector) != ix.dim {
		return malformedResultf("vector dimension %d, index dimension %d", len(vector), ix.dim)
	}

	for i, d := range ix.docs {
		if d.match.ID == m.ID {
			ix.docs[i] = memDoc{match: m, vector: vector}
			return nil
		}
	}
	ix.docs = append(ix.docs, memDoc{match: m, vector: vector})
	return nil
}

// Query returns the topK most similar documents by cosine similarity,
// ordered by descending score.
func (ix *MemoryIndex) Query(_ context.Context, vector []float32, topK int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make([]Match, 0, len(ix.docs))
	for _, d := range ix.docs {
		m := d.match
		m.Score = cosineSimilarity(vector, d.vector)
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Stats reports the index size and dimensionality.
func (ix *MemoryIndex) Stats(_ context.Context) (IndexStats, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return IndexStats{
		Name:         ix.name,
		TotalVectors: int64(len(ix.docs)),
		Dimension:    ix.dim,
	}, nil
}

// cosineSimilarity computes cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0. The result is clamped to
// [0, 1]: rounding can push a self-match one ulp past 1, and Index
// promises scores in that range.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return math.Max(0, math.Min(1, dot/(math.Sqrt(normA)*math.Sqrt(normB))))
}

// Ensure MemoryIndex implements Index
var _ Index = (*MemoryIndex)(nil)
