package app

import (
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/readfromfile/internal/output"
	"github.com/blackwell-systems/readfromfile/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyKind  string
	historyPath  string
	historyPrune int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded expansions",
	Long: `List expansions recorded in the history database, newest first.
Recording is off by default; enable it with --record or history.enabled in
the config file.

Examples:
  readfromfile history
  readfromfile history --limit 50 --kind read_failure
  readfromfile history --prune 100   # keep only the newest 100 rows`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Number of rows to show (default: config history.limit)")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Filter by outcome: ok, empty, missing_path, invalid_path, read_failure")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "Filter by resolved file path")
	historyCmd.Flags().IntVar(&historyPrune, "prune", -1, "Delete all but the newest N rows and exit")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr(), sessionOptions{quietReporter: true, openHistory: true})
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if historyPrune >= 0 {
		n, err := s.db.PruneExpansions(historyPrune)
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		fmt.Fprintf(out, "Removed %d rows\n", n)
		return nil
	}

	limit := historyLimit
	if limit <= 0 {
		limit = s.cfg.History.Limit
	}
	rows, err := s.db.ListExpansions(store.Filter{Limit: limit, Kind: historyKind, Path: historyPath})
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if flagJSON {
		if rows == nil {
			rows = []store.Expansion{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Fprintln(out, output.Section("History"))
	fmt.Fprintln(out)
	if len(rows) == 0 {
		fmt.Fprintf(out, " %s\n\n", output.StyleMuted.Render("No expansions recorded."))
		return nil
	}

	tbl := output.NewTable("TIME", "OUTCOME", "PATH", "TEXT")
	tbl.MaxCell = 48
	for _, r := range rows {
		path := r.ResolvedPath
		if path == "" {
			path = r.Input
		}
		detail := r.Text
		if r.Message != "" {
			detail = r.Message
		}
		tbl.AddRow(r.ExpandedAt.Local().Format("2006-01-02 15:04:05"), outcomeLabel(r.Kind), path, detail)
	}
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// outcomeLabel styles a stored outcome kind.
func outcomeLabel(kind string) string {
	switch kind {
	case store.KindOK:
		return output.StyleSuccess.Render(kind)
	case store.KindEmpty:
		return output.StyleWarning.Render(kind)
	default:
		return output.StyleError.Render(kind)
	}
}
