package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/dshills/qpattern-mcp/internal/amplify"
	"github.com/dshills/qpattern-mcp/internal/attention"
	"github.com/dshills/qpattern-mcp/internal/measurement"
	"github.com/dshills/qpattern-mcp/internal/oracle"
	"github.com/dshills/qpattern-mcp/internal/scanner"
	"github.com/dshills/qpattern-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "qpattern-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.qpattern"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	store     storage.Store
	scanner   *scanner.Scanner
	marker    *oracle.Marker
	search    *amplify.Search
	weighter  *attention.Weighter
	simulator *measurement.Simulator
	rngMu     sync.Mutex // weighter and simulator share stateful random sources
	log       zerolog.Logger
}

// NewServer creates a new MCP server instance backed by a SQLite store at
// dbPath. Marks persisted by earlier sessions are rehydrated into the
// in-memory oracle so amplified searches see them immediately.
func NewServer(dbPath string, log zerolog.Logger) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".qpattern")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(dbPath, "qpattern.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	marker := oracle.New()
	persisted, err := store.ListMarks(context.Background(), "")
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load persisted marks: %w", err)
	}
	for _, mark := range persisted {
		marker.Mark(mark.PatternID, mark.Category, mark.Confidence)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		scanner:   scanner.New(marker, store, nil, log),
		marker:    marker,
		search:    amplify.New(marker),
		weighter:  attention.New(nil),
		simulator: measurement.New(nil),
		log:       log,
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	s.log.Info().Str("version", ServerVersion).Msg("serving on stdio")
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(scanPatternsTool(), s.handleScanPatterns)
	s.mcp.AddTool(markPatternTool(), s.handleMarkPattern)
	s.mcp.AddTool(amplifiedSearchTool(), s.handleAmplifiedSearch)
	s.mcp.AddTool(weighAttentionTool(), s.handleWeighAttention)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
