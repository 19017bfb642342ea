package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/embedder"
)

func TestNewServer(t *testing.T) {
	cfg := config.Config{
		DBPath:  filepath.Join(t.TempDir(), "history.db"),
		Backend: config.BackendTFIDF,
	}

	server, err := NewServer(cfg)
	require.NoError(t, err)
	defer func() { _ = server.store.Close() }()

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.ranker)
	assert.Equal(t, "tfidf", server.ranker.BackendName())
}

func TestToolDefinitions(t *testing.T) {
	search := searchHistoryTool()
	assert.Equal(t, "search_history", search.Name)
	assert.Contains(t, search.InputSchema.Required, "query")

	generate := generateEmbeddingsTool()
	assert.Equal(t, "generate_embeddings", generate.Name)
	assert.Empty(t, generate.InputSchema.Required)

	status := getStatusTool()
	assert.Equal(t, "get_status", status.Name)
	assert.Empty(t, status.InputSchema.Required)
}

func TestGenerateEmbeddings_ConcurrentRunRejected(t *testing.T) {
	t.Setenv(embedder.EnvProvider, embedder.ProviderLocal)

	cfg := config.Config{
		DBPath:  filepath.Join(t.TempDir(), "history.db"),
		Backend: config.BackendTFIDF,
	}
	server, err := NewServer(cfg)
	require.NoError(t, err)
	defer func() { _ = server.store.Close() }()

	// Hold the server's generation lock as an in-flight run would, then
	// invoke the tool: the handler builds a fresh Generator per call but
	// must share this lock and be rejected.
	require.True(t, server.genLock.TryAcquire())
	defer server.genLock.Release()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{}

	_, err = server.handleGenerateEmbeddings(context.Background(), req)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeGenerationInProgress, mcpErr.Code)
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeEmptyQuery, "query parameter is required", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
	assert.Contains(t, mcpErr.Error(), "query parameter is required")
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{
		"from_json": float64(7),
		"native":    3,
	}
	assert.Equal(t, 7, getIntDefault(args, "from_json", 10))
	assert.Equal(t, 3, getIntDefault(args, "native", 10))
	assert.Equal(t, 10, getIntDefault(args, "missing", 10))
}
