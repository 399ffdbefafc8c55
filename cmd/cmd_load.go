// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcodagnone/geocoder/loader"
	"github.com/jcodagnone/geocoder/utils/httputils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Download the geonames dump and rebuild the gazetteer",
	Long: `
load downloads the geonames dump files missing from the data directory and
replaces the content of the database with them. Files already present are
reused; delete them to fetch a fresh dump.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := os.MkdirAll(cfg.Loader.DataDir, 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.DB().Close()

		var trace *slog.Logger
		if cfg.Loader.HTTPTrace {
			trace = slog.Default()
		}

		client := httputils.NewClient(cfg.Loader.UserAgent, trace)
		files := loader.NewDownloader(cfg.Loader.BaseURL, cfg.Loader.DataDir, client, cfg.Loader.Retries, slog.Default())

		opts := []loader.Option{
			loader.WithBatchSize(cfg.Loader.BatchSize),
			loader.WithLogger(slog.Default()),
		}
		if isatty.IsTerminal(os.Stderr.Fd()) {
			opts = append(opts, loader.WithProgress(os.Stderr))
		}

		report, err := loader.New(files, s, opts...).Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report)

		return nil
	},
}

func init() {
	loadCmd.Flags().String("loader.datadir", "", "directory holding the dump files")
	loadCmd.Flags().String("loader.baseurl", "", "geonames dump URL")
	loadCmd.Flags().Int("loader.batchsize", 0, "rows per insert transaction")
	loadCmd.Flags().Bool("loader.httptrace", false, "log every HTTP request")
	rootCmd.AddCommand(loadCmd)
}
