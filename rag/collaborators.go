package rag

import "context"

// Embedder turns text into a vector of provider-defined dimensionality.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a provider failure is returned as-is; this layer never retries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Match is one vector-search candidate, validated at the boundary rather
// than trusted as an untyped provider record.
type Match struct {
	ID      string
	Score   float64
	Text    string
	Source  string
	Page    int
	Section string
}

// IndexStats reports aggregate statistics about a vector index.
type IndexStats struct {
	Name         string `json:"name"`
	TotalVectors int64  `json:"total_vectors"`
	Dimension    int    `json:"dimension"`
}

// Index is the vector-search collaborator.
//
// Contract:
// - Query returns at most topK matches ordered by descending score.
// - Scores are similarity values in [0, 1]; higher is more relevant.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Stats(ctx context.Context) (IndexStats, error)
}

// Document is a grounding fragment handed to the Generator.
type Document struct {
	Text    string
	Source  string
	Page    int
	Section string
	Score   float64
}

// GenerationResult is the typed outcome of a generation call.
type GenerationResult struct {
	Answer string
	Model  string
	Usage  TokenUsage
}

// Generator produces an answer grounded in the given documents.
type Generator interface {
	Generate(ctx context.Context, query string, docs []Document, qctx Context) (*GenerationResult, error)
}

// validateMatches rejects provider results that do not match the expected
// shape: scores outside [0, 1] or candidates with no text at all.
func validateMatches(matches []Match) error {
	for i, m := range matches {
		if m.Score < 0 || m.Score > 1 {
			return malformedResultf("match %d: score %g outside [0, 1]", i, m.Score)
		}
		if m.Text == "" {
			return malformedResultf("match %d (%s): empty text", i, m.ID)
		}
	}
	return nil
}
