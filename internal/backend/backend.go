// Package backend computes per-command similarity scores for a query.
//
// Three tiers exist, selected once per process in fixed precedence order:
// TF-IDF (in-process, no model), dense embeddings (stored vectors plus a
// provider for anything unembedded), and none (callers fall back to pure
// keyword scoring). A backend either returns one score per document or an
// error; it never partially succeeds.
package backend

import "context"

// Document is one corpus item handed to a backend. Text is already
// enriched with stored keywords where the command has them.
type Document struct {
	ID   int64
	Text string
}

// Backend scores every document against a query. Scores are cosine
// similarities intended to lie in [0,1]; undefined similarity is 0.
type Backend interface {
	// Similarities returns one score per document, in document order.
	Similarities(ctx context.Context, docs []Document, query string) ([]float64, error)

	// Name identifies the backend in diagnostics.
	Name() string
}
