package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func TestMemoryIndexQueryOrdering(t *testing.T) {
	ctx := context.Background()
	ix := NewMemoryIndex("test")

	// Orthogonal-ish vectors with a clear ranking against the query.
	seed := []struct {
		id     string
		vector []float32
	}{
		{"exact", []float32{1, 0, 0}},
		{"close", []float32{0.9, 0.1, 0}},
		{"far", []float32{0, 1, 0}},
	}
	for _, s := range seed {
		if err := ix.Upsert(Match{ID: s.id, Text: "t", Source: "s"}, s.vector); err != nil {
			t.Fatalf("Upsert(%s): %v", s.id, err)
		}
	}

	matches, err := ix.Query(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	if matches[0].ID != "exact" || matches[1].ID != "close" || matches[2].ID != "far" {
		t.Errorf("order = %s, %s, %s", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-6 {
		t.Errorf("identical vector score = %g, want 1", matches[0].Score)
	}
	for i, m := range matches {
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("match %d score %g outside [0, 1]", i, m.Score)
		}
	}
}

func TestMemoryIndexTopK(t *testing.T) {
	ctx := context.Background()
	ix := NewMemoryIndex("test")

	for i, v := range [][]float32{{1, 0}, {0.8, 0.2}, {0.5, 0.5}, {0, 1}} {
		if err := ix.Upsert(Match{ID: string(rune('a' + i)), Text: "t", Source: "s"}, v); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := ix.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("topK=2 returned %d matches", len(matches))
	}
}

func TestMemoryIndexUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	ix := NewMemoryIndex("test")

	if err := ix.Upsert(Match{ID: "d1", Text: "alt", Source: "s"}, []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(Match{ID: "d1", Text: "neu", Source: "s"}, []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	stats, err := ix.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalVectors != 1 {
		t.Errorf("TotalVectors = %d, want 1 after replace", stats.TotalVectors)
	}

	matches, err := ix.Query(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].Text != "neu" {
		t.Errorf("Text = %q, want replaced document", matches[0].Text)
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	ix := NewMemoryIndex("test")

	if err := ix.Upsert(Match{ID: "d1", Text: "t", Source: "s"}, []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	err := ix.Upsert(Match{ID: "d2", Text: "t", Source: "s"}, []float32{1, 0})
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("Upsert with wrong dimension = %v, want ErrMalformedResult", err)
	}
}

func TestMemoryIndexStats(t *testing.T) {
	ctx := context.Background()
	ix := NewMemoryIndex("corpus")

	stats, err := ix.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Name != "corpus" || stats.TotalVectors != 0 || stats.Dimension != 0 {
		t.Errorf("empty index stats = %+v", stats)
	}

	if err := ix.Upsert(Match{ID: "d1", Text: "t", Source: "s"}, []float32{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	stats, _ = ix.Stats(ctx)
	if stats.TotalVectors != 1 || stats.Dimension != 4 {
		t.Errorf("stats = %+v, want 1 vector of dimension 4", stats)
	}
}

func TestCosineSimilaritySelfMatchWithinBounds(t *testing.T) {
	// Self-similarity arithmetic routinely lands one ulp above 1; the
	// clamp must hold it inside [0, 1] for every vector.
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 1000; trial++ {
		v := make([]float32, 64)
		for i := range v {
			v[i] = rng.Float32()
		}
		if got := cosineSimilarity(v, v); got < 0 || got > 1 {
			t.Fatalf("trial %d: cosineSimilarity(v, v) = %.17g, outside [0, 1]", trial, got)
		}
	}
}

func TestMemoryIndexQueryWithStoredVector(t *testing.T) {
	ctx := context.Background()
	ix := NewMemoryIndex("test")

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := make([]float32, 64)
		for j := range v {
			v[j] = rng.Float32()
		}
		if err := ix.Upsert(Match{ID: fmt.Sprintf("d%d", i), Text: "t", Source: "s"}, v); err != nil {
			t.Fatal(err)
		}

		// Querying with a document's own vector must stay inside the
		// score contract so downstream validation never rejects it.
		matches, err := ix.Query(ctx, v, 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := validateMatches(matches); err != nil {
			t.Fatalf("document %d: %v", i, err)
		}
	}
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"mismatched lengths", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical", []float32{0.5, 0.5}, []float32{0.5, 0.5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %g, want %g", got, tt.want)
			}
		})
	}
}
