package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	e := NewHashingEmbedder(0)

	first, err := e.Embed(ctx, "Schanigarten Genehmigung Wien")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(first) != DefaultHashingDimension {
		t.Fatalf("dimension = %d, want %d", len(first), DefaultHashingDimension)
	}

	second, err := e.Embed(ctx, "Schanigarten Genehmigung Wien")
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestHashingEmbedderNormalized(t *testing.T) {
	e := NewHashingEmbedder(64)

	vector, err := e.Embed(context.Background(), "Restaurant Genehmigung Wien MA 36")
	if err != nil {
		t.Fatal(err)
	}
	if len(vector) != 64 {
		t.Fatalf("dimension = %d, want 64", len(vector))
	}

	var norm float64
	for _, v := range vector {
		if v < 0 {
			t.Fatalf("negative component %g; cosine range guarantee broken", v)
		}
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("L2 norm = %g, want 1", math.Sqrt(norm))
	}
}

func TestHashingEmbedderCaseAndPunctuation(t *testing.T) {
	ctx := context.Background()
	e := NewHashingEmbedder(0)

	a, _ := e.Embed(ctx, "Genehmigung, Wien!")
	b, _ := e.Embed(ctx, "genehmigung wien")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("casing and punctuation should not change the embedding")
		}
	}

	c, _ := e.Embed(ctx, "genehmigung graz")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different tokens produced identical embeddings")
	}
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	vector, err := NewHashingEmbedder(0).Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed(empty) = %v", err)
	}
	for i, v := range vector {
		if v != 0 {
			t.Fatalf("empty text produced non-zero component at %d", i)
		}
	}
}

func TestHashingEmbedderMatchesCosineExpectations(t *testing.T) {
	ctx := context.Background()
	e := NewHashingEmbedder(0)

	query, _ := e.Embed(ctx, "Schanigarten Genehmigung")
	overlap, _ := e.Embed(ctx, "Schanigarten Genehmigung Antrag Unterlagen")
	disjoint, _ := e.Embed(ctx, "Hundeabgabe Meldezettel")

	simOverlap := cosineSimilarity(query, overlap)
	simDisjoint := cosineSimilarity(query, disjoint)
	if simOverlap <= simDisjoint {
		t.Errorf("overlapping text scored %g, disjoint %g", simOverlap, simDisjoint)
	}
}

func TestExtractiveGeneratorTopTwo(t *testing.T) {
	docs := []Document{
		{Text: "Dritter Text. Noch ein Satz.", Source: "BauO", Score: 0.55},
		{Text: "Erster Text. Zweiter Satz. Dritter Satz. Vierter Satz.", Source: "GewO", Score: 0.92},
		{Text: "Zweiter Text.", Source: "AVG", Score: 0.7},
	}

	result, err := NewExtractiveGenerator().Generate(context.Background(), "frage", docs, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Model != ExtractiveModel {
		t.Errorf("Model = %q, want %q", result.Model, ExtractiveModel)
	}
	if !strings.Contains(result.Answer, "(Quelle: GewO)") {
		t.Errorf("answer missing top source citation: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "(Quelle: AVG)") {
		t.Errorf("answer missing second source citation: %q", result.Answer)
	}
	if strings.Contains(result.Answer, "BauO") {
		t.Errorf("third-ranked source leaked into answer: %q", result.Answer)
	}
	// Only the first three sentences of a document are quoted.
	if strings.Contains(result.Answer, "Vierter Satz") {
		t.Errorf("answer exceeds sentence limit: %q", result.Answer)
	}
	if result.Usage.Total != result.Usage.Input+result.Usage.Output {
		t.Errorf("Usage = %+v, totals inconsistent", result.Usage)
	}
	if result.Usage.Output == 0 {
		t.Error("Output tokens = 0")
	}
}

func TestExtractiveGeneratorSingleDocument(t *testing.T) {
	docs := []Document{{Text: "Einziger Text.", Source: "GewO", Score: 0.8}}

	result, err := NewExtractiveGenerator().Generate(context.Background(), "frage", docs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer != "Einziger Text. (Quelle: GewO)" {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestExtractiveGeneratorNoDocuments(t *testing.T) {
	_, err := NewExtractiveGenerator().Generate(context.Background(), "frage", nil, nil)
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("Generate(no docs) = %v, want ErrMalformedResult", err)
	}
}

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under limit", "Ein Satz.", 3, "Ein Satz."},
		{"at limit", "Eins. Zwei. Drei.", 3, "Eins. Zwei. Drei."},
		{"over limit", "Eins. Zwei. Drei. Vier.", 2, "Eins. Zwei."},
		{"question and exclamation", "Wirklich? Ja! Sicher.", 2, "Wirklich? Ja!"},
		{"no terminator", "Fragment ohne Punkt", 3, "Fragment ohne Punkt"},
		{"leading whitespace", "  Satz.  ", 1, "Satz."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstSentences(tt.text, tt.max); got != tt.want {
				t.Errorf("firstSentences(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}
