package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/light_api/internal/app/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := runtime.NewApplication(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Error("failed to build application")
			return err
		}

		runErr := app.Run(ctx)
		if runErr != nil {
			log.WithError(runErr).Error("server stopped")
		} else {
			log.WithContext(ctx).Info("shutting down")
		}

		if err := app.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("graceful shutdown incomplete")
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
