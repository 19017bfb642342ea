package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/storage"
)

func setupSelectStore(t *testing.T) storage.Store {
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSelect_AutoPrefersTFIDF(t *testing.T) {
	store := setupSelectStore(t)

	b, err := Select(context.Background(), config.Config{}, store)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "tfidf", b.Name())
}

func TestSelect_PinnedTFIDF(t *testing.T) {
	store := setupSelectStore(t)

	b, err := Select(context.Background(), config.Config{Backend: config.BackendTFIDF}, store)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "tfidf", b.Name())
}

func TestSelect_PinnedDense(t *testing.T) {
	t.Setenv(embedder.EnvProvider, embedder.ProviderLocal)
	store := setupSelectStore(t)

	b, err := Select(context.Background(), config.Config{Backend: config.BackendDense}, store)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "dense", b.Name())
}

func TestSelect_PinnedNone(t *testing.T) {
	store := setupSelectStore(t)

	b, err := Select(context.Background(), config.Config{Backend: config.BackendNone}, store)
	require.NoError(t, err)
	assert.Nil(t, b, "none means lexical fallback, no vector backend")
}

func TestSelect_UnavailablePinFallsThrough(t *testing.T) {
	// Pin dense but make the provider unconstructible: the selection must
	// fall through to the next tier instead of failing.
	t.Setenv(embedder.EnvProvider, embedder.ProviderJina)
	t.Setenv(embedder.EnvJinaAPIKey, "")
	store := setupSelectStore(t)

	b, err := Select(context.Background(), config.Config{Backend: config.BackendDense}, store)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "tfidf", b.Name())
}
