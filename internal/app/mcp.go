package app

import (
	"os"

	"github.com/blackwell-systems/readfromfile/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the macro to editors over MCP stdio",
	Long: `Start a Model Context Protocol stdio server. The server exposes two tools:

  read_from_file   Fold a file into a single line (arguments: path, base_dir)
  describe_macro   Name, description, and default base directory

Failures are returned as tool errors carrying the failure message; nothing
is written to stdout except protocol messages.

Example MCP client configuration:
  {"mcpServers":{"readfromfile":{"command":"readfromfile","args":["mcp","--base-dir","/path/to/project"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr(), sessionOptions{quietReporter: true})
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcp.NewServer(s.macro, appVersion, s.logger)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
