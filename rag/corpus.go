package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// CorpusDocument is one entry of a documents file: a pre-chunked piece
// of source material ready for indexing.
type CorpusDocument struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Source  string `json:"source"`
	Page    int    `json:"page,omitempty"`
	Section string `json:"section,omitempty"`
}

// LoadCorpus reads a JSON documents file.
func LoadCorpus(path string) ([]CorpusDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rag: read corpus %s: %w", path, err)
	}

	var docs []CorpusDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("rag: parse corpus %s: %w", path, err)
	}

	for i, d := range docs {
		if d.Text == "" {
			return nil, fmt.Errorf("rag: corpus document %d: empty text", i)
		}
		if d.ID == "" {
			docs[i].ID = fmt.Sprintf("doc-%d", i)
		}
	}
	return docs, nil
}

// BuildMemoryIndex embeds the documents and loads them into a fresh
// in-memory index.
func BuildMemoryIndex(ctx context.Context, name string, docs []CorpusDocument, embedder Embedder) (*MemoryIndex, error) {
	index := NewMemoryIndex(name)
	for _, d := range docs {
		vector, err := embedder.Embed(ctx, d.Text)
		if err != nil {
			return nil, fmt.Errorf("rag: embed corpus document %s: %w", d.ID, err)
		}
		match := Match{
			ID:      d.ID,
			Text:    d.Text,
			Source:  d.Source,
			Page:    d.Page,
			Section: d.Section,
		}
		if err := index.Upsert(match, vector); err != nil {
			return nil, err
		}
	}
	return index, nil
}
