package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/blackwell-systems/readfromfile/internal/config"
	"github.com/blackwell-systems/readfromfile/internal/notify"
	"github.com/blackwell-systems/readfromfile/internal/output"
	"github.com/blackwell-systems/readfromfile/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and environment",
	Long: `Run a series of health checks against the readfromfile configuration:
the base directory, the notifier, the history database, and the log file.
Prints a pass/fail line for each check and a summary.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg)
	output.AutoColor(flagNoColor || !cfg.Output.Color)

	checks := []doctorCheck{
		checkBaseDir(cfg.BaseDir),
		checkNotifier(cfg.Notify),
		checkHistory(cfg.History),
		checkLogFile(cfg.Log.File),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		indicator := output.StyleSuccess.Render("✓")
		if !c.Passed {
			indicator = output.StyleWarning.Render("✗")
		}
		fmt.Fprintf(out, "  %s  %-24s %s\n", indicator, output.StyleBold.Render(c.Name), output.StyleMuted.Render(c.Message))
	}
	fmt.Fprintln(out)

	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// checkBaseDir verifies the base directory, when set, is a directory.
func checkBaseDir(baseDir string) doctorCheck {
	const name = "Base directory"
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("not set and cwd unavailable: %v", err)}
		}
		return doctorCheck{Name: name, Passed: true, Message: "not set, using cwd " + wd}
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("not found: %s", baseDir)}
	}
	if !info.IsDir() {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("not a directory: %s", baseDir)}
	}
	return doctorCheck{Name: name, Passed: true, Message: baseDir}
}

// checkNotifier verifies the configured failure notifier can work.
func checkNotifier(mode string) doctorCheck {
	const name = "Notifier"
	switch mode {
	case notify.ModeTerminal, notify.ModeNone:
		return doctorCheck{Name: name, Passed: true, Message: mode}
	case notify.ModeDesktop:
		tool := map[string]string{"darwin": "osascript", "linux": "notify-send"}[runtime.GOOS]
		if tool == "" {
			return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("desktop notifications unsupported on %s, falling back to terminal", runtime.GOOS)}
		}
		if _, err := exec.LookPath(tool); err != nil {
			return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("%s not found, falling back to terminal", tool)}
		}
		return doctorCheck{Name: name, Passed: true, Message: "desktop via " + tool}
	default:
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("unknown mode %q, using terminal", mode)}
	}
}

// checkHistory verifies the history database opens when recording is on.
func checkHistory(h config.History) doctorCheck {
	const name = "History database"
	if !h.Enabled {
		return doctorCheck{Name: name, Passed: true, Message: "recording disabled"}
	}
	db, err := store.Open(h.DBPath)
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("cannot open %s: %v", h.DBPath, err)}
	}
	defer func() { _ = db.Close() }()
	rows, err := db.ListExpansions(store.Filter{})
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("cannot read %s: %v", h.DBPath, err)}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("%s (%d rows)", h.DBPath, len(rows))}
}

// checkLogFile verifies the log directory exists or can be created.
func checkLogFile(file string) doctorCheck {
	const name = "Log file"
	if file == "" {
		return doctorCheck{Name: name, Passed: true, Message: "stderr only"}
	}
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	return doctorCheck{Name: name, Passed: true, Message: file}
}
