package mcp

import (
	"context"

	"invopt-mcp/internal/config"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/planning"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Catalog is the variant data the server reads from.
type Catalog interface {
	planning.Source
	Variants() []inventory.Variant
}

// Server holds the state for the MCP server.
type Server struct {
	catalog             Catalog
	service             *planning.Service
	enableMermaidCharts bool
	version             string
}

// NewServer creates a new MCP server over the given catalog.
func NewServer(cfg *config.AppConfig, catalog Catalog, version string) *Server {
	return &Server{
		catalog:             catalog,
		service:             planning.NewService(catalog, cfg.Planning, nil),
		enableMermaidCharts: cfg.EnableMermaidCharts,
		version:             version,
	}
}

// Start serves the registered tools over stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	server := gomcp.NewServer(&gomcp.Implementation{Name: "invopt-mcp", Version: s.version}, nil)
	s.registerTools(server)

	log.Info().Int("tools", len(toolDefinitions)).Msg("MCP server listening on stdio")
	if err := server.Run(ctx, &gomcp.StdioTransport{}); err != nil {
		log.Error().Err(err).Msg("MCP server stopped")
		return err
	}
	return nil
}
