// Package rag orchestrates retrieval-augmented answering: embed the
// query, search the vector index, filter by relevance, and generate a
// grounded answer with cited sources.
//
// The embedding, vector-index, and generation providers are external
// collaborators expressed as interfaces; this package owns the pipeline
// and the typed validation of what the collaborators return.
package rag
