/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/api"
	"github.com/ssargent/rollbook/pkg/logging"
)

func newServeCmd(opts *options) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the rollbook REST API server. Requests must carry the configured
API key in the X-API-Key header.

Examples:
  rollbook serve
  rollbook serve --port 9000 --bind 0.0.0.0
  rollbook serve --api-key mysecretkey --backend pebble`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			roster, err := rosterFrom(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("bind") {
				cfg.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("api-key") {
				cfg.Security.APIKey, _ = flags.GetString("api-key")
			}

			if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
				return errors.New("no API key configured: run 'rollbook init' or pass --api-key")
			}

			if container == nil {
				return errors.New("dependency container not initialized")
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !opts.Quiet {
				cmd.Printf("Starting rollbook server on %s:%d\n", cfg.Bind, cfg.Port)
				cmd.Printf("Storage: %s\n", roster.Backend().Describe())
			}

			starter := container.GetServerFactory().CreateServerStarter()
			if err := starter.StartServer(ctx, roster, api.ServerConfig{
				Port:   cfg.Port,
				Bind:   cfg.Bind,
				APIKey: cfg.Security.APIKey,
				Logger: logger,
			}); err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for client authentication (overrides config)")

	return serveCmd
}
