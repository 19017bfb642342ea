package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/storage"
)

// stubEmbedder returns fixed vectors per text, defaulting to axis [1,0,0].
type stubEmbedder struct {
	vectors map[string][]float32
	batches int
	fail    bool
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	if s.fail {
		return nil, errors.New("provider down")
	}
	vec, ok := s.vectors[req.Text]
	if !ok {
		vec = []float32{1, 0, 0}
	}
	return &embedder.Embedding{Vector: vec, Dimension: len(vec), Provider: "stub", Model: "stub-v1"}, nil
}

func (s *stubEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	if s.fail {
		return nil, errors.New("provider down")
	}
	s.batches++
	out := make([]*embedder.Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := s.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return &embedder.BatchEmbeddingResponse{Embeddings: out, Provider: "stub", Model: "stub-v1"}, nil
}

func (s *stubEmbedder) Dimension() int   { return 3 }
func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub-v1" }
func (s *stubEmbedder) Close() error     { return nil }

func TestDense_Name(t *testing.T) {
	assert.Equal(t, "dense", NewDense(&stubEmbedder{}, nil).Name())
}

func TestDense_UsesStoredVectors(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	stored := map[int64][]byte{
		1: storage.EncodeVector([]float32{1, 0, 0}), // parallel to query
		2: storage.EncodeVector([]float32{0, 1, 0}), // orthogonal
	}
	b := NewDense(emb, stored)

	docs := []Document{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}
	scores, err := b.Similarities(context.Background(), docs, "query")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0], 1e-6)
	assert.InDelta(t, 0.0, scores[1], 1e-6)
	assert.Zero(t, emb.batches, "stored vectors must not trigger live encoding")
}

func TestDense_MalformedStoredVectorScoresZero(t *testing.T) {
	emb := &stubEmbedder{}
	stored := map[int64][]byte{
		1: {0x01, 0x02, 0x03}, // not a multiple of 4 bytes
	}
	b := NewDense(emb, stored)

	scores, err := b.Similarities(context.Background(), []Document{{ID: 1, Text: "a"}}, "query")
	require.NoError(t, err, "decode failure must not abort the query")
	assert.Zero(t, scores[0])
}

func TestDense_EncodesMissingVectorsLive(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query":        {1, 0, 0},
		"docker redis": {1, 0, 0},
		"ls la":        {0, 0, 1},
	}}
	b := NewDense(emb, nil)

	docs := []Document{{ID: 1, Text: "docker redis"}, {ID: 2, Text: "ls la"}}
	scores, err := b.Similarities(context.Background(), docs, "query")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0], 1e-6)
	assert.InDelta(t, 0.0, scores[1], 1e-6)
	assert.Equal(t, 1, emb.batches)
}

func TestDense_EmptyTextScoresZero(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query":        {1, 0, 0},
		"docker redis": {1, 0, 0},
	}}
	b := NewDense(emb, nil)

	// The stub hands out a default vector for any unknown text, so a zero
	// score proves the blank document never reached the embedder.
	docs := []Document{{ID: 1, Text: "   "}, {ID: 2, Text: "docker redis"}}
	scores, err := b.Similarities(context.Background(), docs, "query")
	require.NoError(t, err, "a blank document must not fail the batch")
	assert.Zero(t, scores[0])
	assert.InDelta(t, 1.0, scores[1], 1e-6)
}

func TestDense_ProviderFailureIsAnError(t *testing.T) {
	b := NewDense(&stubEmbedder{fail: true}, nil)
	_, err := b.Similarities(context.Background(), []Document{{ID: 1, Text: "a"}}, "query")
	assert.Error(t, err)
}

func TestDense_DimensionMismatchScoresZero(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	stored := map[int64][]byte{
		1: storage.EncodeVector([]float32{1, 0}), // wrong dimension
	}
	b := NewDense(emb, stored)

	scores, err := b.Similarities(context.Background(), []Document{{ID: 1, Text: "a"}}, "query")
	require.NoError(t, err)
	assert.Zero(t, scores[0])
}
