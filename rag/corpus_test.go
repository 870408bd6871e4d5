package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCorpus(t *testing.T) {
	path := writeCorpusFile(t, `[
		{"id": "gewo-74", "text": "§ 74 Text.", "source": "GewO", "page": 3, "section": "§ 74"},
		{"text": "Ohne ID.", "source": "BauO"}
	]`)

	docs, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].ID != "gewo-74" || docs[0].Page != 3 || docs[0].Section != "§ 74" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	// Missing IDs get positional defaults.
	if docs[1].ID != "doc-1" {
		t.Errorf("docs[1].ID = %q, want doc-1", docs[1].ID)
	}
}

func TestLoadCorpusErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "nicht json"},
		{"object instead of array", `{"id": "x"}`},
		{"empty text", `[{"id": "d1", "text": "", "source": "GewO"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCorpusFile(t, tt.content)
			if _, err := LoadCorpus(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildMemoryIndexFromCorpus(t *testing.T) {
	ctx := context.Background()
	docs := []CorpusDocument{
		{ID: "d1", Text: "Schanigarten Genehmigung Antrag.", Source: "GewO", Section: "§ 74"},
		{ID: "d2", Text: "Hundeabgabe Meldung.", Source: "BauO"},
	}
	embedder := NewHashingEmbedder(0)

	index, err := BuildMemoryIndex(ctx, "corpus", docs, embedder)
	if err != nil {
		t.Fatalf("BuildMemoryIndex: %v", err)
	}

	stats, err := index.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalVectors != 2 || stats.Dimension != DefaultHashingDimension {
		t.Errorf("stats = %+v", stats)
	}

	// A query overlapping d1's tokens must rank it first, with its
	// document fields carried through.
	vector, err := embedder.Embed(ctx, "Schanigarten Genehmigung")
	if err != nil {
		t.Fatal(err)
	}
	matches, err := index.Query(ctx, vector, 2)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].ID != "d1" {
		t.Errorf("top match = %s, want d1", matches[0].ID)
	}
	if matches[0].Source != "GewO" || matches[0].Section != "§ 74" {
		t.Errorf("document fields lost: %+v", matches[0])
	}
}
