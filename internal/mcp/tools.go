package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/generator"
)

// MCP error codes
const (
	ErrorCodeInvalidParams        = -32602 // Invalid method parameters
	ErrorCodeInternalError        = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery           = -32001 // Query parameter is empty
	ErrorCodeGenerationInProgress = -32002 // Another generation run is already active
	ErrorCodeNoProvider           = -32003 // No embedding provider available
)

// handleSearchHistory handles the search_history tool invocation
func (s *Server) handleSearchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 10 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 10", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.ranker.Rank(ctx, query)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(results) > limit {
		results = results[:limit]
	}

	items := make([]map[string]interface{}, len(results))
	for i, res := range results {
		items[i] = map[string]interface{}{
			"id":        res.CommandID,
			"command":   res.Command,
			"timestamp": res.Timestamp,
			"cwd":       res.Cwd,
			"exit_code": res.ExitCode,
			"score":     fmt.Sprintf("%.4f", res.Score),
		}
	}

	response := map[string]interface{}{
		"query":   query,
		"backend": s.ranker.BackendName(),
		"count":   len(items),
		"results": items,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGenerateEmbeddings handles the generate_embeddings tool invocation.
// The provider is created per invocation so a missing API key fails the
// call, not server startup.
func (s *Server) handleGenerateEmbeddings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	batchSize := getIntDefault(args, "batch_size", generator.DefaultBatchSize)
	if batchSize < 1 || batchSize > embedder.MaxBatchSize {
		return nil, newMCPError(ErrorCodeInvalidParams, "batch_size must be between 1 and 100", map[string]interface{}{
			"param": "batch_size",
			"value": batchSize,
		})
	}

	emb, err := embedder.NewFromEnv(s.config.ForceCPUOnly)
	if err != nil {
		return nil, newMCPError(ErrorCodeNoProvider, "no embedding provider available", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() { _ = emb.Close() }()

	gen := generator.NewWithLock(s.store, emb, &s.genLock)
	stats, err := gen.Run(ctx, &generator.Config{BatchSize: batchSize})
	if err != nil {
		if errors.Is(err, generator.ErrGenerationInProgress) {
			return nil, newMCPError(ErrorCodeGenerationInProgress, "embedding generation already in progress", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if stats.Embedded > 0 {
		// New vectors change dense scores; cached query results are stale.
		s.ranker.InvalidateCache()
	}

	response := map[string]interface{}{
		"provider":       emb.Provider(),
		"model":          emb.Model(),
		"pending":        stats.Pending,
		"embedded":       stats.Embedded,
		"failed_batches": stats.FailedBatches,
		"duration_ms":    stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commands, err := s.store.CountCommands(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count commands", map[string]interface{}{
			"error": err.Error(),
		})
	}
	embeddings, err := s.store.CountEmbeddings(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count embeddings", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"database": s.config.DBPath,
		"backend":  s.ranker.BackendName(),
		"statistics": map[string]interface{}{
			"commands_count":   commands,
			"embeddings_count": embeddings,
			"pending_count":    commands - embeddings,
		},
		"embedding_provider": embedder.DetectProvider(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
