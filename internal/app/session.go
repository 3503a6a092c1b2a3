package app

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/readfromfile/internal/config"
	"github.com/blackwell-systems/readfromfile/internal/logging"
	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/normalize"
	"github.com/blackwell-systems/readfromfile/internal/notify"
	"github.com/blackwell-systems/readfromfile/internal/output"
	"github.com/blackwell-systems/readfromfile/internal/store"
	"go.uber.org/zap"
)

// session bundles what a command needs to expand files.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	reporter macro.Reporter
	macro    *macro.Macro
	db       *store.DB
	closers  []func()
}

// sessionOptions tweaks newSession for commands with special needs.
type sessionOptions struct {
	// quietReporter builds the macro without a reporter; the command
	// surfaces failures itself.
	quietReporter bool
	// openHistory opens the history database even when recording is off.
	openHistory bool
}

// newSession loads config, applies flag overrides, and wires logging,
// reporting, and optional history recording.
func newSession(stderr io.Writer, opts sessionOptions) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg)

	output.AutoColor(flagNoColor || !cfg.Output.Color)

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:     level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Console:   stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		reporter: notify.New(cfg.Notify, stderr),
		closers:  []func(){closeLog},
	}

	var r macro.Reporter = s.reporter
	if opts.quietReporter {
		r = nil
	}
	s.macro = macro.New(&normalize.Normalizer{Confine: cfg.ConfineToBase}, r, cfg.BaseDir)
	s.macro.Logger = logger

	if cfg.History.Enabled || opts.openHistory {
		db, err := store.Open(cfg.History.DBPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("opening history database: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, func() { _ = db.Close() })
		if cfg.History.Enabled {
			s.macro.Recorder = store.NewRecorder(db)
		}
	}

	logger.Debug("session ready",
		zap.String("base_dir", cfg.BaseDir),
		zap.String("notify", cfg.Notify),
		zap.Bool("history", cfg.History.Enabled))
	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if flagBaseDir != "" {
		cfg.BaseDir = flagBaseDir
	}
	if flagNotify != "" {
		cfg.Notify = flagNotify
	}
	if flagRecord {
		cfg.History.Enabled = true
	}
}
