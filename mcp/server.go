package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/dkovalev83/ozon-scrap/config"
	"github.com/dkovalev83/ozon-scrap/internal/ozon"
)

// Serve starts the MCP stdio server with all tools registered.
func Serve(crawler *ozon.Client, cfg *config.Config) error {
	s := server.NewMCPServer(
		"ozon-scrap",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, crawler, cfg)

	return server.ServeStdio(s)
}
