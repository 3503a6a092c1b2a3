package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var expandNoNewline bool

// errExpansionFailed is returned when at least one argument failed; the
// failures themselves were already reported.
var errExpansionFailed = errors.New("one or more files could not be expanded")

var expandCmd = &cobra.Command{
	Use:   "expand [path...]",
	Short: "Print the folded content of one or more files",
	Long: `Read each file, drop lines starting with # or //, and print the rest
as a single line with whitespace collapsed. Each argument produces exactly one
output line, in argument order; a file with no content produces an empty line.

Failures (missing argument, invalid path, unreadable file) are reported via
the configured notifier and make the command exit non-zero.

Examples:
  readfromfile expand args.txt
  readfromfile expand --base-dir ~/code/app conf/jvm-options.txt
  readfromfile expand -n "path with spaces/args.txt"
  readfromfile expand --json a.txt b.txt`,
	Args: cobra.ArbitraryArgs,
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().BoolVarP(&expandNoNewline, "no-newline", "n", false, "Do not print a trailing newline after the last line")
	rootCmd.AddCommand(expandCmd)
}

// expandResult is the JSON shape of one expansion.
type expandResult struct {
	Input string `json:"input"`
	Path  string `json:"path,omitempty"`
	Text  string `json:"text"`
	Empty bool   `json:"empty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

func runExpand(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr(), sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		s.macro.ExpandNoArgs()
		return errExpansionFailed
	}

	outcomes := expandAll(s.macro, args)

	failed := false
	for _, o := range outcomes {
		if o.Err != nil {
			failed = true
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		results := make([]expandResult, 0, len(outcomes))
		for _, o := range outcomes {
			results = append(results, toExpandResult(o))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for i, o := range outcomes {
			text, _ := o.Text()
			if i == len(outcomes)-1 && expandNoNewline {
				fmt.Fprint(out, text)
			} else {
				fmt.Fprintln(out, text)
			}
		}
	}

	if failed {
		return errExpansionFailed
	}
	return nil
}

// expandAll expands every argument concurrently and returns outcomes in
// argument order. Each expansion is independent; a failure does not stop
// the others.
func expandAll(m *macro.Macro, args []string) []macro.Outcome {
	outcomes := make([]macro.Outcome, len(args))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, arg := range args {
		g.Go(func() error {
			outcomes[i] = m.Run(arg, m.BaseDir())
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func toExpandResult(o macro.Outcome) expandResult {
	text, ok := o.Text()
	r := expandResult{
		Input: o.Input,
		Path:  o.Result.Path,
		Text:  text,
		Empty: !ok,
	}
	if o.Err != nil {
		r.Kind = o.Kind().String()
		r.Error = o.Message
	}
	return r
}
