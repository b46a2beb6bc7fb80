/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/config"
	"github.com/ssargent/rollbook/pkg/di"
	"github.com/ssargent/rollbook/pkg/logging"
	"github.com/ssargent/rollbook/pkg/service"
	"github.com/ssargent/rollbook/pkg/storage"
)

// Global options bound to persistent flags
type options struct {
	ConfigPath string
	EnvFile    string
	DataDir    string
	Backend    string
	Decoder    string
	Format     string
	Quiet      bool
	Yes        bool
}

type contextKey string

const (
	rosterKey contextKey = "roster"
	configKey contextKey = "config"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// NewRootCmd builds the rollbook command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "rollbook",
		Short: "rollbook - Student record book",
		Long: `rollbook keeps student records (roll number, name, marks) in a flat
file, an embedded Pebble database or a SQL database (SQLite or PostgreSQL).

Examples:
  rollbook add 101 "Alice" 87.5
  rollbook list --format json
  rollbook shell
  rollbook serve --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			roster, err := openRoster(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			cmd.SetContext(context.WithValue(ctx, rosterKey, roster))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if roster, ok := cmd.Context().Value(rosterKey).(*service.Roster); ok {
				return roster.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (default: OS-specific location)")
	flags.StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file with ROLLBOOK_* overrides")
	flags.StringVarP(&opts.DataDir, "data-dir", "d", "", "data directory (overrides config)")
	flags.StringVar(&opts.Backend, "backend", "", "storage backend: file, pebble, sqlite or postgres (overrides config)")
	flags.StringVar(&opts.Decoder, "decoder", "", "line decoder: naive or quoted (overrides config)")
	flags.StringVarP(&opts.Format, "format", "o", "table", "output format (table or json)")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-essential messages")
	flags.BoolVarP(&opts.Yes, "yes", "y", false, "assume 'yes' for prompts")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newGetCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newShellCmd(opts),
		newServeCmd(opts),
		newInitCmd(opts),
		newServiceCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the config file when present, then applies environment
// and flag overrides in that order
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg, opts.EnvFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.DataDir
	}
	if flags.Changed("backend") {
		cfg.Storage.Backend = opts.Backend
	}
	if flags.Changed("decoder") {
		cfg.Storage.Decoder = opts.Decoder
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch opts.Format {
	case formatTable, formatJSON:
	default:
		return nil, fmt.Errorf("invalid output format %q: expected table or json", opts.Format)
	}

	return cfg, nil
}

// openRoster opens the configured backend and loads every record
func openRoster(cmd *cobra.Command, cfg *config.Config) (*service.Roster, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	mode, err := codec.ParseMode(cfg.Storage.Decoder)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	backend, err := container.GetBackendFactory().OpenBackend(storage.Options{
		Kind:     cfg.Storage.Backend,
		DataDir:  cfg.DataDir,
		FileName: cfg.Storage.File,
		DSN:      cfg.Storage.DSN,
		Codec:    codec.NewLineCodec(mode, logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	roster := service.NewRoster(backend, logger)
	if _, err := roster.LoadAll(cmd.Context()); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return roster, nil
}

// rosterFrom returns the roster opened by PersistentPreRunE
func rosterFrom(cmd *cobra.Command) (*service.Roster, error) {
	roster, ok := cmd.Context().Value(rosterKey).(*service.Roster)
	if !ok {
		return nil, errors.New("roster not found in context")
	}
	return roster, nil
}

// configFrom returns the resolved config
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}
