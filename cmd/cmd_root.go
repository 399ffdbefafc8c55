// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geocoder/config"
	"github.com/jcodagnone/geocoder/search"
	"github.com/jcodagnone/geocoder/store"
	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geocoder",
	Short: "search places in the geonames gazetteer",
	Long: `
geocoder loads the geonames dump into a local DuckDB database and answers
free text place queries such as "Springfield, Illinois" or "Paris, France",
most populated places first.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		slog.SetDefault(cfg.NewLogger(os.Stderr))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default geocoder.yaml in ., ./config or $HOME/.config)")
	rootCmd.PersistentFlags().String("db.path", "", "DuckDB database file")
	rootCmd.PersistentFlags().String("log.level", "", "log level: debug, info, warn or error")
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openStore opens the configured database and makes sure its schema exists.
func openStore(ctx context.Context) (*store.Store, error) {
	if dir := filepath.Dir(cfg.DB.Path); cfg.DB.Path != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := store.New(db)
	if err := s.CreateSchema(ctx); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func newService(s *store.Store) *search.Service {
	return search.NewService(s,
		search.WithLogger(slog.Default()),
		search.WithDefaultLimit(cfg.Search.DefaultLimit),
		search.WithMaxLimit(cfg.Search.MaxLimit),
		search.WithAlternateNameCache(cfg.Search.CacheSize),
	)
}
