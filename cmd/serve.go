package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/dkovalev83/ozon-scrap/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	crawler, err := newCrawler()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting ozon-scrap MCP server on stdio...")
	return mcpserver.Serve(crawler, cfg)
}
