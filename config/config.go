// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the geocoder settings from defaults, an optional YAML
// file, GEOCODER_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GEOCODER_DB_PATH.
const EnvPrefix = "GEOCODER"

// Config holds all configuration for the application.
type Config struct {
	DB     DBConfig
	Server ServerConfig
	Log    LogConfig
	Search SearchConfig
	Loader LoaderConfig
}

// DBConfig holds the gazetteer database settings.
type DBConfig struct {
	Path string // DuckDB file, empty for an in-memory database
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Addr           string
	GinMode        string // debug, release, test
	RequestTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string // debug, info, warn, error
}

// SearchConfig holds the search defaults.
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
	CacheSize    int
}

// LoaderConfig holds the geonames import settings.
type LoaderConfig struct {
	DataDir   string
	BaseURL   string
	BatchSize int
	UserAgent string
	HTTPTrace bool
	Retries   int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "geocoder.duckdb")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("server.requesttimeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("search.defaultlimit", 10)
	v.SetDefault("search.maxlimit", 100)
	v.SetDefault("search.cachesize", 4096)
	v.SetDefault("loader.datadir", "data")
	v.SetDefault("loader.baseurl", "https://download.geonames.org/export/dump/")
	v.SetDefault("loader.batchsize", 10_000)
	v.SetDefault("loader.useragent", "geocoder/dev")
	v.SetDefault("loader.httptrace", false)
	v.SetDefault("loader.retries", 3)
}

// Load reads the configuration. When path is empty geocoder.yaml is looked
// up in the working directory, ./config and $HOME/.config, and a missing file
// is not an error. Flags, when not nil, are bound by name: a flag called
// "db.path" overrides the db.path key.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("geocoder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.defaultlimit must be positive, got %d", c.Search.DefaultLimit))
	}

	if c.Search.MaxLimit < c.Search.DefaultLimit {
		errs = append(errs, fmt.Errorf("search.maxlimit %d is lower than search.defaultlimit %d",
			c.Search.MaxLimit, c.Search.DefaultLimit))
	}

	if c.Loader.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("loader.batchsize must be positive, got %d", c.Loader.BatchSize))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger returns a logger writing to w. Colours are used only when w is a
// terminal.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)

	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	}))
}
