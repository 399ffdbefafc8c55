// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geocoder/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve place search over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.DB().Close()

		gin.SetMode(cfg.Server.GinMode)

		srv := server.New(newService(s),
			server.WithPinger(s.DB()),
			server.WithRequestTimeout(cfg.Server.RequestTimeout),
		)

		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("server.addr", "", "listen address")
	rootCmd.AddCommand(serveCmd)
}
