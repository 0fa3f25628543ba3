// ABOUTME: MCP subcommand for running the zenoter MCP server
// ABOUTME: Serves the note tools over stdio through the host's bridge
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/zenoter/internal/bridge"
	"github.com/harper/zenoter/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the zenoter MCP server",
	Long: `Start the Model Context Protocol server for AI assistants over stdio.
Note operations go through the running host, so "zenoter serve" must be up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Stdout carries the protocol; warnings go to stderr.
		client := bridge.NewClient(cfg.SocketPath, clientLogger(os.Stderr))
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close connection: %v\n", closeErr)
			}
		}()

		server := mcp.NewServer(client, Version)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
