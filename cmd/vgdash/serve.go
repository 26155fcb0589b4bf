package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/server"
)

var listenAddr string

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "Listen address, overriding server.addr")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			a.cfg.Server.Addr = listenAddr
		}

		// Setup graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			<-sigChan
			logger.Info("Shutdown signal received, cleaning up...")
			cancel()
		}()

		if err := a.load(ctx); err != nil {
			return err
		}

		var gatherer prometheus.Gatherer
		if a.cfg.Server.MetricsEnabled {
			gatherer = a.registry
		}
		srv := server.New(a.svc, a.metrics, gatherer)

		if err := server.Run(ctx, a.cfg.Server, srv.Handler()); err != nil {
			return err
		}
		logger.Info("Service stopped")
		return nil
	},
}
