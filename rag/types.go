package rag

import "time"

// Context carries optional scalar attributes that scope a query, such as
// business type, size, or district. Attribute order never affects cache
// identity; canonicalization sorts entries before hashing.
type Context map[string]any

// Source is one retrieved grounding fragment cited in an answer.
type Source struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Page    int     `json:"page,omitempty"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
}

// TokenUsage reports token counts consumed by the generation call.
// Purely observational; never affects control flow.
type TokenUsage struct {
	Input  int `json:"input_tokens"`
	Output int `json:"output_tokens"`
	Total  int `json:"total_tokens"`
}

// Metadata describes how an answer was produced.
type Metadata struct {
	Model          string     `json:"model"`
	Usage          TokenUsage `json:"usage"`
	DurationMS     int64      `json:"duration_ms"`
	DocumentsFound int        `json:"documents_found"`
	DocumentsUsed  int        `json:"documents_used"`
}

// Response is a grounded answer with cited sources. It is also the unit
// of cache storage: Answer, Sources, Metadata, and OriginalTimestamp are
// immutable once written; only Cached and CachedAt differ between a
// fresh computation and a cache hit of the same entry.
type Response struct {
	Answer            string    `json:"answer"`
	Sources           []Source  `json:"sources"`
	Metadata          Metadata  `json:"metadata"`
	Cached            bool      `json:"cached"`
	CachedAt          time.Time `json:"cached_at,omitzero"`
	OriginalTimestamp time.Time `json:"original_timestamp,omitzero"`
}
