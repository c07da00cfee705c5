package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Serve the index to AI assistants over the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and browse tools over MCP",
	Long: `Serve hybrid search, API listings and raw specs to an MCP client.

Without --port the server speaks JSON-RPC on stdio, which is what desktop
assistants launch. With --port it serves streamable HTTP at /mcp, plus a
/healthz probe, until interrupted.

Examples:
  # Stdio mode (default)
  alexandria mcp serve

  # HTTP mode
  alexandria mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "alexandria": {
        "command": "/path/to/alexandria",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if port < 0 || port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	ports := &mcp.Ports{
		Search: searchService,
		Source: sourceService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s%s\n", addr, mcp.HTTPPath)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
