// Package macro is the host-facing side of ReadFromFile. It turns a macro
// argument into a single line of text and never lets a failure escape:
// failures go to a Reporter and the caller only sees "no result".
package macro

import (
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/readfromfile/internal/normalize"
	"go.uber.org/zap"
)

// Name is the identifier hosts use to invoke the macro.
const Name = "ReadFromFile"

// Description is shown by listing surfaces such as the MCP tool list.
const Description = "Reads a text file, skips # and // comment lines, and returns its content as a single line."

// FailureTitle heads every failure report.
const FailureTitle = "ReadFromFile failed"

// Failure is handed to a Reporter whenever an expansion yields no result
// because of an error.
type Failure struct {
	Kind    normalize.Kind
	Title   string
	Message string
	Err     error
}

// Reporter displays failures to whoever invoked the macro.
type Reporter interface {
	ReportFailure(f Failure)
}

// Recorder receives every outcome, successful or not.
type Recorder interface {
	Record(o Outcome) error
}

// Outcome describes a single expansion.
type Outcome struct {
	Input   string
	BaseDir string
	Result  normalize.Result
	Err     error
	Message string
	At      time.Time
}

// Text returns the expanded line and whether there was one.
func (o Outcome) Text() (string, bool) {
	if o.Err != nil {
		return "", false
	}
	return o.Result.Content()
}

// Kind returns the failure kind, or normalize.KindNone on success.
func (o Outcome) Kind() normalize.Kind {
	return normalize.KindOf(o.Err)
}

// Macro expands file paths into single lines of text.
type Macro struct {
	normalizer *normalize.Normalizer
	reporter   Reporter
	baseDir    string

	// Recorder is optional; record errors are logged and otherwise ignored.
	Recorder Recorder
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New creates a Macro that resolves relative paths against baseDir (empty
// means the working directory) and reports failures to r. A nil r drops
// failure reports.
func New(n *normalize.Normalizer, r Reporter, baseDir string) *Macro {
	if n == nil {
		n = &normalize.Normalizer{}
	}
	return &Macro{
		normalizer: n,
		reporter:   r,
		baseDir:    baseDir,
		Logger:     zap.NewNop(),
	}
}

// BaseDir returns the directory relative paths resolve against.
func (m *Macro) BaseDir() string {
	return m.baseDir
}

// ExpandNoArgs handles an invocation without any argument.
func (m *Macro) ExpandNoArgs() (string, bool) {
	return m.Expand()
}

// Expand uses the first argument as the path. It returns false when there
// is no usable content, whether because of an error or an empty file.
func (m *Macro) Expand(args ...string) (string, bool) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	return m.Run(raw, m.baseDir).Text()
}

// Run expands raw against baseDir and returns the full outcome. Failures
// are reported exactly once.
func (m *Macro) Run(raw, baseDir string) Outcome {
	out := Outcome{Input: raw, BaseDir: baseDir, At: time.Now()}
	out.Result, out.Err = m.normalize(raw, baseDir)

	log := m.logger().With(zap.String("input", raw), zap.String("base_dir", baseDir))
	if out.Err != nil {
		out.Message = Message(out.Err)
		log.Info("expansion failed",
			zap.Stringer("kind", out.Kind()),
			zap.Error(out.Err))
		if m.reporter != nil {
			m.reporter.ReportFailure(Failure{
				Kind:    out.Kind(),
				Title:   FailureTitle,
				Message: out.Message,
				Err:     out.Err,
			})
		}
	} else {
		log.Debug("expanded",
			zap.String("path", out.Result.Path),
			zap.Int("lines", out.Result.Lines),
			zap.Int("kept", out.Result.Kept),
			zap.Int("length", len(out.Result.Text)))
	}

	if m.Recorder != nil {
		if err := m.Recorder.Record(out); err != nil {
			log.Warn("recording outcome", zap.Error(err))
		}
	}
	return out
}

// normalize calls the normalizer and converts a panic into a read failure
// so nothing escapes to the host.
func (m *Macro) normalize(raw, baseDir string) (res normalize.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = normalize.Result{}
			err = &normalize.Error{
				Kind: normalize.KindReadFailure,
				Path: normalize.CleanInput(raw),
				Err:  fmt.Errorf("panic: %v", p),
			}
		}
	}()
	return m.normalizer.Normalize(raw, baseDir)
}

func (m *Macro) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

// Message returns the human-readable text shown for err.
func Message(err error) string {
	var ne *normalize.Error
	if !errors.As(err, &ne) {
		return fmt.Sprintf("%s could not read file: %v", Name, err)
	}
	switch ne.Kind {
	case normalize.KindMissingPath:
		return Name + " requires a file path argument"
	default:
		return fmt.Sprintf("%s could not read file: %s", Name, ne.Path)
	}
}
