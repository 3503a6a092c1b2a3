package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/normalize"
	"github.com/blackwell-systems/readfromfile/internal/output"
	"github.com/blackwell-systems/readfromfile/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchInterval string
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-print a file's folded content whenever it changes",
	Long: `Expand a file, then keep watching it. Whenever the folded line changes
(edits to comments or spacing alone do not count), the new line is printed.
Failures such as the file being deleted are reported once until the result
changes again.

Examples:
  readfromfile watch args.txt                 # ctrl-c to stop
  readfromfile watch --interval 500ms args.txt
  readfromfile watch --json args.txt          # one JSON object per change`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Polling interval alongside file events (default: config watch.interval)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Print only the folded line, without timestamps")
	rootCmd.AddCommand(watchCmd)
}

// shutdownSignals are the OS signals that trigger graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr(), sessionOptions{quietReporter: true})
	if err != nil {
		return err
	}
	defer s.Close()

	interval := s.cfg.Watch.Interval
	if watchInterval != "" {
		interval, err = time.ParseDuration(watchInterval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
		}
	}
	if interval < 100*time.Millisecond {
		return fmt.Errorf("interval must be at least 100ms, got %s", interval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	out := cmd.OutOrStdout()
	onChange := func(c watcher.Change) {
		if c.Outcome.Err != nil {
			reportError(s.reporter, c.Outcome.Err)
		}
		printChange(out, c)
	}

	w := watcher.New(s.macro, args[0], s.macro.BaseDir(), interval, onChange)
	w.Logger = s.logger

	err = w.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case normalize.KindOf(err) != normalize.KindNone:
		reportError(s.reporter, err)
		return errExpansionFailed
	}
	return err
}

// reportError hands an expansion error to r with the macro's message.
func reportError(r macro.Reporter, err error) {
	r.ReportFailure(macro.Failure{
		Kind:    normalize.KindOf(err),
		Title:   macro.FailureTitle,
		Message: macro.Message(err),
		Err:     err,
	})
}

// printChange writes one change. JSON mode emits one object per line.
func printChange(out io.Writer, c watcher.Change) {
	if flagJSON {
		data, err := json.Marshal(toExpandResult(c.Outcome))
		if err == nil {
			fmt.Fprintln(out, string(data))
		}
		return
	}

	text, ok := c.Outcome.Text()
	if watchQuiet {
		if c.Outcome.Err == nil {
			fmt.Fprintln(out, text)
		}
		return
	}

	stamp := output.StyleMuted.Render("[" + c.Time.Format("15:04:05") + "]")
	switch {
	case c.Outcome.Err != nil:
		fmt.Fprintf(out, "%s %s\n", stamp, output.StyleError.Render(c.Outcome.Kind().String()))
	case !ok:
		fmt.Fprintf(out, "%s %s\n", stamp, output.StyleWarning.Render("(no content)"))
	default:
		fmt.Fprintf(out, "%s %s\n", stamp, text)
	}
}
