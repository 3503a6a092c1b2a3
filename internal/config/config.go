package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level readfromfile configuration.
type Config struct {
	BaseDir       string  `mapstructure:"base_dir"`
	ConfineToBase bool    `mapstructure:"confine_to_base"`
	Notify        string  `mapstructure:"notify"`
	History       History `mapstructure:"history"`
	Log           Log     `mapstructure:"log"`
	Watch         Watch   `mapstructure:"watch"`
	Output        Output  `mapstructure:"output"`
}

// History controls the optional expansion log.
type History struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	Limit   int    `mapstructure:"limit"`
}

// Log controls diagnostic logging.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	// MaxSizeMB rotates the log file by size instead of daily when set.
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// Watch controls the watch command.
type Watch struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with READFROMFILE_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_dir", "")
	v.SetDefault("confine_to_base", false)
	v.SetDefault("notify", DefaultNotify)
	v.SetDefault("history.enabled", DefaultHistory.Enabled)
	v.SetDefault("history.db_path", "")
	v.SetDefault("history.limit", DefaultHistory.Limit)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 0)
	v.SetDefault("watch.interval", DefaultWatchInterval)
	v.SetDefault("output.color", DefaultOutput.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.BaseDir = expandPath(cfg.BaseDir)
	cfg.Log.File = expandPath(cfg.Log.File)
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = DBPath()
	}
	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = DefaultHistory.Limit
	}
	if cfg.Watch.Interval <= 0 {
		cfg.Watch.Interval = DefaultWatchInterval
	}

	return &cfg, nil
}

// DBPath returns the default path to the SQLite history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
