package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/cmdrecall/internal/backend"
	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/generator"
	"github.com/dshills/cmdrecall/internal/ranker"
	"github.com/dshills/cmdrecall/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "cmdrecall-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	config config.Config
	store  storage.Store
	ranker *ranker.Ranker

	// genLock serializes generation runs across tool invocations; each
	// generate_embeddings call builds a fresh Generator but shares this
	// lock.
	genLock generator.RunLock
}

// NewServer creates a new MCP server instance over the configured history
// database.
func NewServer(cfg config.Config) (*Server, error) {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	b, err := backend.Select(context.Background(), cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to select similarity backend: %w", err)
	}

	rnk, err := ranker.New(store, b)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		config: cfg,
		store:  store,
		ranker: rnk,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchHistoryTool(), s.handleSearchHistory)
	s.mcp.AddTool(generateEmbeddingsTool(), s.handleGenerateEmbeddings)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
