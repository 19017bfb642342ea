package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchHistoryTool returns the tool definition for search_history
func searchHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_history",
		Description: "Search shell command history with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-10)",
					"default":     10,
					"minimum":     1,
					"maximum":     10,
				},
			},
			Required: []string{"query"},
		},
	}
}

// generateEmbeddingsTool returns the tool definition for generate_embeddings
func generateEmbeddingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_embeddings",
		Description: "Generate dense embeddings for commands that do not have one yet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"batch_size": map[string]interface{}{
					"type":        "integer",
					"description": "Commands encoded and committed per transaction",
					"default":     100,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report history database statistics and active similarity backend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
