// Package watcher re-expands a file whenever it changes and emits the new
// line only when the expansion result differs from the previous one.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/normalize"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change is emitted when the expansion of the watched file changes.
type Change struct {
	Outcome macro.Outcome
	Time    time.Time
}

// Key identifies an outcome for deduplication.
func (c Change) Key() string {
	if c.Outcome.Err != nil {
		return "err:" + c.Outcome.Kind().String() + ":" + c.Outcome.Message
	}
	return "ok:" + c.Outcome.Result.Text
}

// Watcher expands one path on every change to the file and on a fallback
// interval, for filesystems where change events are unreliable.
type Watcher struct {
	m        *macro.Macro
	input    string
	baseDir  string
	interval time.Duration
	onChange func(Change)
	lastKey  string
	started  bool

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New creates a Watcher for input resolved against baseDir.
func New(m *macro.Macro, input, baseDir string, interval time.Duration, onChange func(Change)) *Watcher {
	return &Watcher{
		m:        m,
		input:    input,
		baseDir:  baseDir,
		interval: interval,
		onChange: onChange,
		Logger:   zap.NewNop(),
	}
}

// Check expands the file once and returns the change, if any. The first
// call always reports.
func (w *Watcher) Check() (Change, bool) {
	c := Change{Outcome: w.m.Run(w.input, w.baseDir), Time: time.Now()}
	key := c.Key()
	if w.started && key == w.lastKey {
		return c, false
	}
	w.started = true
	w.lastKey = key
	return c, true
}

// Run emits the initial expansion, then re-expands on file events and every
// interval. Blocks until ctx is cancelled. A path that cannot be resolved
// is returned as an error before anything is emitted.
func (w *Watcher) Run(ctx context.Context) error {
	if normalize.CleanInput(w.input) == "" {
		return &normalize.Error{Kind: normalize.KindMissingPath}
	}
	target, dir, err := w.target()
	if err != nil {
		return err
	}

	w.emit()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often replace files by rename, which
	// drops a watch held on the file itself.
	if err := fsw.Add(dir); err != nil {
		w.Logger.Warn("cannot watch directory, polling only", zap.String("dir", dir), zap.Error(err))
	}

	interval := w.interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			w.Logger.Debug("file event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
			w.emit()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("file watcher error", zap.Error(err))
		case <-ticker.C:
			w.emit()
		}
	}
}

func (w *Watcher) emit() {
	if c, changed := w.Check(); changed && w.onChange != nil {
		w.onChange(c)
	}
}

// target resolves the watched file and its directory.
func (w *Watcher) target() (string, string, error) {
	path, err := normalize.Resolve(normalize.CleanInput(w.input), w.baseDir, false)
	if err != nil {
		return "", "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, filepath.Dir(path), nil
}
