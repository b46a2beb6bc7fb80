/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/config"
)

func newInitCmd(opts *options) *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with a generated API key",
		Long: `Create the rollbook configuration file and data directory. A secure
API key for the REST server is generated and stored in the file.

Examples:
  rollbook init
  rollbook init --data-dir ./data --print-key
  rollbook init --config ./rollbook.yaml --force`,
		Args: cobra.NoArgs,
		// init creates the config, so there is nothing to load yet
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			configPath := opts.ConfigPath
			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, opts.DataDir)
			if err != nil {
				return fmt.Errorf("failed to bootstrap config: %w", err)
			}

			if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			if !opts.Quiet {
				cmd.Printf("✅ Configuration created at %s\n", configPath)
				cmd.Printf("Data directory: %s\n", cfg.DataDir)
			}
			if printKey {
				cmd.Printf("API key: %s\n", cfg.Security.APIKey)
				cmd.Printf("Store this key securely! It is also saved in %s\n", configPath)
			}
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")

	return initCmd
}
