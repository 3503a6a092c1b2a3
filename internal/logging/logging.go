// Package logging builds the zap logger shared by the command tree.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the logger writes.
type Options struct {
	// Level is a zap level name; invalid names fall back to warn.
	Level string
	// File, when set, receives JSON logs rotated daily.
	File string
	// MaxSizeMB switches file rotation from daily to size based.
	MaxSizeMB int
	// MaxAge bounds how long rotated files are kept.
	MaxAge time.Duration
	// Console receives human-readable logs; nil means stderr.
	Console io.Writer
}

// Default rotation settings for file output.
const (
	DefaultMaxAge       = 7 * 24 * time.Hour
	DefaultRotationTime = 24 * time.Hour
	DefaultMaxBackups   = 3
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// New builds a logger and a cleanup func that flushes and closes outputs.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zapcore.WarnLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(console),
			level,
		),
	}

	var closers []io.Closer
	if opts.File != "" {
		w, err := newFileWriter(opts)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, w)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(w),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named("readfromfile")
	cleanup := func() {
		_ = logger.Sync()
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return logger, cleanup, nil
}

// newFileWriter picks size-based rotation when MaxSizeMB is set and daily
// rotation otherwise.
func newFileWriter(opts Options) (io.WriteCloser, error) {
	if opts.MaxSizeMB > 0 {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		maxAge := opts.MaxAge
		if maxAge <= 0 {
			maxAge = DefaultMaxAge
		}
		return &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     int(maxAge / (24 * time.Hour)),
			LocalTime:  true,
		}, nil
	}
	return newRotatingWriter(opts.File, opts.MaxAge)
}

// newRotatingWriter writes to file.YYYYMMDD and keeps file as a symlink to
// the current one.
func newRotatingWriter(file string, maxAge time.Duration) (*rotatelogs.RotateLogs, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	w, err := rotatelogs.New(
		file+".%Y%m%d",
		rotatelogs.WithLinkName(file),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(DefaultRotationTime),
	)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return w, nil
}
