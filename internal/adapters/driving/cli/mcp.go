package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

The config file is watched while the server runs; edits such as a new
retrieval.min_similarity apply to the next tool call.

Examples:
  # Stdio mode (default, for Claude Desktop)
  sercha-rag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  sercha-rag mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "sercha-rag": {
        "command": "/path/to/sercha-rag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var mcpNoWatch bool

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpNoWatch, "no-watch", false, "do not reload settings when the config file changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func currentPorts() *mcp.Ports {
	return &mcp.Ports{
		Answer:   answerService,
		Search:   searchService,
		Document: documentService,
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(currentPorts())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	if !mcpNoWatch && configPath != "" && reloadServices != nil {
		watcher, err := file.NewWatcher(configPath, 0, func() { reloadMCP(ctx, server) })
		if err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// reloadMCP rebuilds the services from the changed config and hands them to
// the server. On failure the running services are kept. The superseded
// providers are released once the server has switched over. Storage
// settings only take effect on restart.
func reloadMCP(ctx context.Context, server *mcp.Server) {
	svc, err := reloadServices(ctx)
	if err != nil {
		logger.Warn("reload failed, keeping previous settings: %v", err)
		return
	}

	ports := &mcp.Ports{Answer: svc.Answer, Search: svc.Search, Document: svc.Document}
	if err := server.SetPorts(ports); err != nil {
		logger.Warn("reload produced unusable services: %v", err)
		release(svc.Release)
		return
	}

	previous := releaseServices
	SetServices(svc)
	release(previous)
	logger.Info("settings reloaded")
}

func release(fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		logger.Warn("releasing providers: %v", err)
	}
}
