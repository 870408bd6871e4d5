package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gastwerk/ragcache/observe"
)

// Config configures the retrieval pipeline.
type Config struct {
	// TopK is the number of nearest documents requested from the index.
	// Default: 5
	TopK int

	// MinScore is the minimum similarity score a document needs to be
	// used for grounding. Default: 0.5
	MinScore float64

	// ExcerptLength is the maximum length in runes of a cited source
	// excerpt. Default: 500
	ExcerptLength int

	// FallbackAnswer is returned when no document clears MinScore.
	// Default: DefaultFallbackAnswer
	FallbackAnswer string

	// Logger, Tracer, and Metrics are optional; nil means no-op.
	Logger  observe.Logger
	Tracer  observe.Tracer
	Metrics observe.Metrics
}

// DefaultFallbackAnswer is served when retrieval finds nothing relevant.
const DefaultFallbackAnswer = "Leider wurden keine relevanten Informationen zu Ihrer Frage gefunden. " +
	"Bitte formulieren Sie Ihre Frage anders oder kontaktieren Sie direkt die MA 36 in Wien."

// Orchestrator runs the retrieval pipeline: embed, search, filter,
// generate. It performs no caching and no retries; collaborator failures
// propagate to the caller.
type Orchestrator struct {
	embedder Embedder
	index    Index
	gen      Generator
	cfg      Config
}

// NewOrchestrator creates an Orchestrator, applying config defaults.
func NewOrchestrator(embedder Embedder, index Index, gen Generator, cfg Config) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.5
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = 500
	}
	if cfg.FallbackAnswer == "" {
		cfg.FallbackAnswer = DefaultFallbackAnswer
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNopLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observe.NewNopTracer()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NewNopMetrics()
	}

	return &Orchestrator{
		embedder: embedder,
		index:    index,
		gen:      gen,
		cfg:      cfg,
	}
}

// Answer runs the full pipeline for one query. The returned Response
// always has Cached=false; stamping happens in the cache coordinator.
func (o *Orchestrator) Answer(ctx context.Context, query string, qctx Context) (*Response, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := o.cfg.Tracer.StartSpan(ctx, "rag.answer",
		attribute.Int("rag.top_k", o.cfg.TopK),
		attribute.Float64("rag.min_score", o.cfg.MinScore),
	)

	resp, err := o.answer(ctx, start, query, qctx)

	found, used := 0, 0
	if resp != nil {
		found = resp.Metadata.DocumentsFound
		used = resp.Metadata.DocumentsUsed
	}
	o.cfg.Metrics.RecordPipeline(ctx, time.Since(start), found, used, err)
	o.cfg.Tracer.EndSpan(span, err)

	return resp, err
}

func (o *Orchestrator) answer(ctx context.Context, start time.Time, query string, qctx Context) (*Response, error) {
	// The original, unnormalized query is embedded; normalization is a
	// cache-identity concern only.
	vector, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}

	matches, err := o.index.Query(ctx, vector, o.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search: %w", err)
	}
	if err := validateMatches(matches); err != nil {
		return nil, err
	}

	found := len(matches)
	relevant := matches[:0:0]
	for _, m := range matches {
		if m.Score >= o.cfg.MinScore {
			relevant = append(relevant, m)
		}
	}

	o.cfg.Logger.Debug(ctx, "retrieval complete",
		observe.Field{Key: "documents_found", Value: found},
		observe.Field{Key: "documents_used", Value: len(relevant)},
	)

	if len(relevant) == 0 {
		return &Response{
			Answer:  o.cfg.FallbackAnswer,
			Sources: []Source{},
			Metadata: Metadata{
				DocumentsFound: found,
				DurationMS:     time.Since(start).Milliseconds(),
			},
			OriginalTimestamp: time.Now().UTC(),
		}, nil
	}

	docs := make([]Document, len(relevant))
	for i, m := range relevant {
		docs[i] = Document{
			Text:    m.Text,
			Source:  m.Source,
			Page:    m.Page,
			Section: m.Section,
			Score:   m.Score,
		}
	}

	gen, err := o.gen.Generate(ctx, query, docs, qctx)
	if err != nil {
		return nil, fmt.Errorf("rag: generate answer: %w", err)
	}
	if gen == nil || gen.Answer == "" {
		return nil, malformedResultf("generator returned empty answer")
	}

	sources := o.buildSources(relevant)

	return &Response{
		Answer:  gen.Answer,
		Sources: sources,
		Metadata: Metadata{
			Model:          gen.Model,
			Usage:          gen.Usage,
			DurationMS:     time.Since(start).Milliseconds(),
			DocumentsFound: found,
			DocumentsUsed:  len(relevant),
		},
		OriginalTimestamp: time.Now().UTC(),
	}, nil
}

// buildSources converts matches into cited sources ordered by descending
// score; ties keep the original retrieval order.
func (o *Orchestrator) buildSources(matches []Match) []Source {
	sources := make([]Source, len(matches))
	for i, m := range matches {
		title := m.Source
		if m.Section != "" {
			title += " - " + m.Section
		}
		sources[i] = Source{
			Title:   title,
			Content: excerpt(m.Text, o.cfg.ExcerptLength),
			Page:    m.Page,
			Section: m.Section,
			Score:   m.Score,
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	return sources
}

// excerpt truncates text to max runes, appending an ellipsis when cut.
func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
