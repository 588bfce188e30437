package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskroll/internal/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Serve the task tracker and focus history over the Model Context
Protocol, for use by agents and editors. The server speaks MCP on
stdin/stdout until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(tracker, historySvc)
		if err := server.Start(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	},
}
