// Package notify provides the ways a failed expansion is surfaced to a
// person: styled terminal lines, desktop notifications, or nothing.
package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/output"
)

// Mode names accepted by New.
const (
	ModeTerminal = "terminal"
	ModeDesktop  = "desktop"
	ModeNone     = "none"
)

// New returns the reporter for mode. Unknown modes fall back to terminal
// output on w.
func New(mode string, w io.Writer) macro.Reporter {
	switch mode {
	case ModeNone:
		return Discard{}
	case ModeDesktop:
		return NewDesktop(w)
	default:
		return NewTerminal(w)
	}
}

// Discard drops every report.
type Discard struct{}

// ReportFailure implements macro.Reporter.
func (Discard) ReportFailure(macro.Failure) {}

// Terminal writes one styled line per failure.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a Terminal reporter writing to w (stderr when nil).
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w}
}

// ReportFailure implements macro.Reporter.
func (t *Terminal) ReportFailure(f macro.Failure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.w, "%s %s\n",
		output.StyleError.Render(f.Title+":"),
		f.Message)
	if f.Err != nil {
		_, _ = fmt.Fprintf(t.w, "  %s\n", output.StyleMuted.Render(f.Err.Error()))
	}
}

// Desktop sends a desktop notification. On macOS it uses osascript, on
// Linux notify-send. When neither works it falls back to a terminal line.
type Desktop struct {
	goos     string
	fallback *Terminal
	lookPath func(file string) (string, error)
	run      func(name string, args ...string) error
}

// NewDesktop creates a Desktop reporter whose fallback writes to w.
func NewDesktop(w io.Writer) *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		fallback: NewTerminal(w),
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// ReportFailure implements macro.Reporter.
func (d *Desktop) ReportFailure(f macro.Failure) {
	if err := d.send(f); err != nil {
		d.fallback.ReportFailure(f)
	}
}

// send delivers f through the platform notifier.
func (d *Desktop) send(f macro.Failure) error {
	switch d.goos {
	case "darwin":
		return d.notifyMacOS(f)
	case "linux":
		return d.notifyLinux(f)
	default:
		return fmt.Errorf("desktop notifications not supported on %s", d.goos)
	}
}

func (d *Desktop) notifyMacOS(f macro.Failure) error {
	script := fmt.Sprintf(
		`display notification %q with title "readfromfile" subtitle %q`,
		f.Message, f.Title,
	)
	return d.run("osascript", "-e", script)
}

func (d *Desktop) notifyLinux(f macro.Failure) error {
	if _, err := d.lookPath("notify-send"); err != nil {
		return err
	}
	return d.run("notify-send", "--urgency=critical", f.Title, f.Message)
}
