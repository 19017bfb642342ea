package backend

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/storage"
)

// encodeBatchSize bounds live encoding batches. Tuning constant, not a
// correctness constraint.
const encodeBatchSize = 64

// DenseBackend scores by cosine similarity of dense embeddings. Stored
// vectors are preferred; commands without one are encoded live through the
// provider. A stored blob that fails to decode scores 0 for that item and
// never aborts the query.
type DenseBackend struct {
	embedder embedder.Embedder
	stored   map[int64][]byte
}

// NewDense creates a dense backend over the given provider and the raw
// stored vector blobs keyed by command id. stored may be nil or empty.
func NewDense(emb embedder.Embedder, stored map[int64][]byte) *DenseBackend {
	return &DenseBackend{
		embedder: emb,
		stored:   stored,
	}
}

func (b *DenseBackend) Name() string {
	return "dense"
}

func (b *DenseBackend) Similarities(ctx context.Context, docs []Document, q string) ([]float64, error) {
	queryEmb, err := b.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: q})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	vectors, err := b.corpusVectors(ctx, docs)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(docs))
	for i, vec := range vectors {
		if vec == nil {
			continue // undecodable stored vector, scores 0
		}
		scores[i] = storage.CosineSimilarity(queryEmb.Vector, vec)
	}
	return scores, nil
}

// corpusVectors resolves one vector per document: decoded stored blob
// where available, live encoding otherwise. The returned slice is indexed
// like docs; a nil entry means the stored blob was malformed.
func (b *DenseBackend) corpusVectors(ctx context.Context, docs []Document) ([][]float32, error) {
	vectors := make([][]float32, len(docs))

	var missing []int
	for i, doc := range docs {
		blob, ok := b.stored[doc.ID]
		if !ok {
			// Providers reject empty input; an empty text simply scores 0
			// rather than failing the batch.
			if strings.TrimSpace(doc.Text) == "" {
				continue
			}
			missing = append(missing, i)
			continue
		}
		vec, err := storage.DecodeVector(blob)
		if err != nil {
			log.Printf("DEBUG: embedding for command %d unreadable: %v", doc.ID, err)
			continue
		}
		vectors[i] = vec
	}

	for start := 0; start < len(missing); start += encodeBatchSize {
		end := start + encodeBatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = docs[idx].Text
		}

		resp, err := b.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
		if err != nil {
			return nil, fmt.Errorf("failed to embed corpus batch: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(batch), len(resp.Embeddings))
		}
		for j, idx := range batch {
			vectors[idx] = resp.Embeddings[j].Vector
		}
	}

	return vectors, nil
}
