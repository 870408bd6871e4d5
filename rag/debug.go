package rag

import "context"

// DebugQueries is the fixed query set exercised by the debug endpoint to
// sanity-check embedding and retrieval without generation.
var DebugQueries = []string{
	"Restaurant Genehmigung Wien",
	"Betriebsanlagengenehmigung Gastro",
	"Schanigarten Außengastronomie",
	"MA 36 Unterlagen Antrag",
}

// DebugScore is one candidate's score for a debug query.
type DebugScore struct {
	Score       float64 `json:"score"`
	Source      string  `json:"source"`
	TextPreview string  `json:"text_preview"`
}

// DebugResult reports retrieval quality for one canned query.
type DebugResult struct {
	Query        string       `json:"query"`
	ResultsCount int          `json:"results_count"`
	TopScores    []DebugScore `json:"top_scores"`
}

// Probe runs the canned queries through embed and search only, reporting
// per-query top scores. Generation is never invoked.
func (o *Orchestrator) Probe(ctx context.Context) ([]DebugResult, error) {
	results := make([]DebugResult, 0, len(DebugQueries))
	for _, query := range DebugQueries {
		vector, err := o.embedder.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		matches, err := o.index.Query(ctx, vector, o.cfg.TopK)
		if err != nil {
			return nil, err
		}

		scores := make([]DebugScore, len(matches))
		for i, m := range matches {
			scores[i] = DebugScore{
				Score:       m.Score,
				Source:      m.Source,
				TextPreview: excerpt(m.Text, 150),
			}
		}
		results = append(results, DebugResult{
			Query:        query,
			ResultsCount: len(matches),
			TopScores:    scores,
		})
	}
	return results, nil
}
