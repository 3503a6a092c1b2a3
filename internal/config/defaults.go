// Package config provides configuration loading and defaults for readfromfile.
package config

import "time"

// DefaultConfigDir is the default location for readfromfile configuration.
const DefaultConfigDir = "~/.config/readfromfile"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultDBName is the filename for the SQLite history database.
const DefaultDBName = "history.db"

// DefaultNotify is the reporter used for failures.
const DefaultNotify = "terminal"

// DefaultLogLevel keeps the CLI quiet unless something goes wrong.
const DefaultLogLevel = "warn"

// DefaultWatchInterval is the polling fallback for the watch command.
const DefaultWatchInterval = 2 * time.Second

// EnvPrefix prefixes environment overrides, e.g. READFROMFILE_BASE_DIR.
const EnvPrefix = "READFROMFILE"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}

// DefaultHistory keeps recording off until asked for.
var DefaultHistory = History{
	Enabled: false,
	Limit:   20,
}
