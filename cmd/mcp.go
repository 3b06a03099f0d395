package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/client"
	mcpserver "github.com/ziadkadry99/pageutil/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio. By default the tools
query a running pageutil server so they see the same registry as the
browser; --local serves only get_string from an in-process catalog, since
there is no registry to watch without a server.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("url", "", "server URL (default http://localhost:<server.port>)")
	mcpCmd.Flags().Bool("local", false, "serve from the local catalog without a running server")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url, _ := cmd.Flags().GetString("url")
	local, _ := cmd.Flags().GetBool("local")

	// Set version from the cmd package variable.
	mcpserver.Version = Version

	var backend mcpserver.StringBackend
	if local {
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		table, err := loadTable(cmd.Context(), cfg, database)
		if err != nil {
			return err
		}
		backend = mcpserver.Local{Table: table}
		fmt.Fprintf(os.Stderr, "pageutil MCP server started on stdio (local catalog, %d components, get_string only)\n", len(table.Components()))
	} else {
		if url == "" {
			url = serverURL(cfg)
		}
		backend = client.New(url)
		fmt.Fprintf(os.Stderr, "pageutil MCP server started on stdio (server=%s)\n", url)
	}

	return mcpserver.NewServer(backend).Serve()
}
