package rag

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
)

// DefaultHashingDimension is the vector size of the offline embedder.
const DefaultHashingDimension = 256

// HashingEmbedder is a deterministic bag-of-tokens embedder for offline
// development and tests. It hashes lowercase tokens into a fixed number
// of buckets and L2-normalizes the result, so cosine scores of
// non-negative vectors stay within [0,1]. It is not a semantic model;
// production deployments plug in a hosted embedding provider.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates a HashingEmbedder. dim <= 0 uses the default.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultHashingDimension
	}
	return &HashingEmbedder{dim: dim}
}

// Embed maps text to a normalized token-count vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vector[h.Sum32()%uint32(e.dim)]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

// ExtractiveGenerator composes answers directly from the grounding
// documents instead of calling a language model. Development-only
// counterpart to a hosted generation provider.
type ExtractiveGenerator struct{}

// NewExtractiveGenerator creates an ExtractiveGenerator.
func NewExtractiveGenerator() *ExtractiveGenerator {
	return &ExtractiveGenerator{}
}

// ExtractiveModel identifies answers produced without a language model.
const ExtractiveModel = "extractive-local"

// Generate returns the highest-scored documents' text, cited by source.
func (g *ExtractiveGenerator) Generate(_ context.Context, query string, docs []Document, _ Context) (*GenerationResult, error) {
	if len(docs) == 0 {
		return nil, malformedResultf("no documents to generate from")
	}

	ordered := append([]Document(nil), docs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	var b strings.Builder
	limit := 2
	if len(ordered) < limit {
		limit = len(ordered)
	}
	for i := 0; i < limit; i++ {
		d := ordered[i]
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s (Quelle: %s)", firstSentences(d.Text, 3), d.Source)
	}

	inputTokens := len(strings.Fields(query))
	for _, d := range docs {
		inputTokens += len(strings.Fields(d.Text))
	}
	answer := b.String()

	return &GenerationResult{
		Answer: answer,
		Model:  ExtractiveModel,
		Usage: TokenUsage{
			Input:  inputTokens,
			Output: len(strings.Fields(answer)),
			Total:  inputTokens + len(strings.Fields(answer)),
		},
	}, nil
}

// firstSentences returns up to max sentences of text.
func firstSentences(text string, max int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count >= max {
				return text[:i+1]
			}
		}
	}
	return text
}

var (
	_ Embedder  = (*HashingEmbedder)(nil)
	_ Generator = (*ExtractiveGenerator)(nil)
)
