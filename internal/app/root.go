// Package app contains the Cobra command tree for readfromfile.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagBaseDir string
	flagNotify  string
	flagRecord  bool
)

var rootCmd = &cobra.Command{
	Use:   "readfromfile",
	Short: "Fold a text file into a single line for command templates",
	Long: `readfromfile implements the ReadFromFile macro. It reads a text file,
drops lines starting with # or //, and prints the rest as one line with
whitespace collapsed, ready to be substituted into a run configuration or
external tool command line.

Relative paths resolve against --base-dir (or base_dir in the config file),
falling back to the current directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "readfromfile", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  expand    Print the folded content of one or more files")
		fmt.Fprintln(out, "  watch     Re-print a file's folded content whenever it changes")
		fmt.Fprintln(out, "  mcp       Serve the macro to editors over MCP stdio")
		fmt.Fprintln(out, "  history   Show recorded expansions")
		fmt.Fprintln(out, "  doctor    Check configuration and environment")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/readfromfile/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "Directory relative paths resolve against (default: config base_dir, then cwd)")
	rootCmd.PersistentFlags().StringVar(&flagNotify, "notify", "", "Failure reporting: terminal, desktop, or none (default: config notify)")
	rootCmd.PersistentFlags().BoolVar(&flagRecord, "record", false, "Record expansions in the history database")
}
