/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/config"
)

const (
	serviceName    = "rollbook.service"
	defaultUnitDir = "/etc/systemd/system"
)

// swapped in tests
var (
	geteuid    = os.Geteuid
	runCommand = func(stdout, stderr io.Writer, command string, args ...string) error {
		c := exec.Command(command, args...)
		c.Stdout = stdout
		c.Stderr = stderr
		return c.Run()
	}
)

func newServiceCmd(opts *options) *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the rollbook REST server as a systemd service",
		Long: `Manage the rollbook REST server as a systemd service. The unit runs
'rollbook serve' against the configuration file and restarts on failure.`,
		// service management never touches the records
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install rollbook as a systemd service",
		Long: `Install rollbook as a systemd service.

This will:
- Create or use the existing configuration
- Write the systemd unit file
- Enable and optionally start the service

Examples:
  sudo rollbook service install
  sudo rollbook service install --data-dir /var/lib/rollbook --user rollbook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if geteuid() != 0 {
				return errors.New("service install requires root privileges (run with sudo)")
			}

			user, _ := cmd.Flags().GetString("user")
			unitDir, _ := cmd.Flags().GetString("unit-dir")
			binary, _ := cmd.Flags().GetString("binary")
			startNow, _ := cmd.Flags().GetBool("start")

			configPath := opts.ConfigPath
			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			var cfg *config.Config
			var err error
			if config.ConfigExists(configPath) {
				cfg, err = config.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cmd.Printf("✅ Loaded existing configuration\n")
			} else {
				cfg, err = config.BootstrapConfig(configPath, opts.DataDir)
				if err != nil {
					return err
				}
				cmd.Printf("✅ Created new configuration at %s\n", configPath)
			}

			if opts.DataDir != "" && opts.DataDir != cfg.DataDir {
				cfg.DataDir = opts.DataDir
				if err := config.SaveConfig(cfg, configPath); err != nil {
					return err
				}
			}

			unitPath := filepath.Join(unitDir, serviceName)
			unit := renderSystemdUnit(cfg, configPath, user, binary)
			if err := os.WriteFile(unitPath, []byte(unit), 0600); err != nil {
				return fmt.Errorf("failed to write systemd unit: %w", err)
			}
			cmd.Printf("Created systemd unit %s\n", unitPath)

			if err := systemctl(cmd, "daemon-reload"); err != nil {
				return err
			}
			if err := systemctl(cmd, "enable", serviceName); err != nil {
				return err
			}
			if startNow {
				if err := systemctl(cmd, "start", serviceName); err != nil {
					return err
				}
				cmd.Printf("✅ Service started\n")
			}

			cmd.Printf("Service: %s\nConfig: %s\nData: %s\nPort: %d\n", serviceName, configPath, cfg.DataDir, cfg.Port)
			return nil
		},
	}
	installCmd.Flags().String("user", "rollbook", "User to run the service as")
	installCmd.Flags().String("unit-dir", defaultUnitDir, "Directory for the systemd unit file")
	installCmd.Flags().String("binary", "/usr/local/bin/rollbook", "Path of the installed rollbook binary")
	installCmd.Flags().Bool("start", true, "Start the service after installation")

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the rollbook service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if geteuid() != 0 {
				return errors.New("service uninstall requires root privileges (run with sudo)")
			}
			unitDir, _ := cmd.Flags().GetString("unit-dir")

			_ = systemctl(cmd, "stop", serviceName)
			if err := systemctl(cmd, "disable", serviceName); err != nil {
				cmd.Printf("Warning: could not disable service: %v\n", err)
			}

			unitPath := filepath.Join(unitDir, serviceName)
			if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove unit file: %w", err)
			}
			if err := systemctl(cmd, "daemon-reload"); err != nil {
				return err
			}

			cmd.Printf("✅ rollbook service uninstalled\n")
			cmd.Printf("Note: configuration and data files were not removed\n")
			return nil
		},
	}
	uninstallCmd.Flags().String("unit-dir", defaultUnitDir, "Directory for the systemd unit file")

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show rollbook service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")
			lines, _ := cmd.Flags().GetInt("lines")

			journalArgs := []string{"-u", serviceName}
			if follow {
				journalArgs = append(journalArgs, "-f")
			}
			if lines > 0 {
				journalArgs = append(journalArgs, fmt.Sprintf("-n%d", lines))
			}
			return runCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), "journalctl", journalArgs...)
		},
	}
	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsCmd.Flags().IntP("lines", "n", 0, "Number of lines to show")

	serviceCmd.AddCommand(installCmd, uninstallCmd, logsCmd)
	for _, action := range []string{"start", "stop", "restart", "status"} {
		serviceCmd.AddCommand(newSystemctlCmd(action))
	}

	return serviceCmd
}

// newSystemctlCmd wraps a plain systemctl action on the unit
func newSystemctlCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("Run systemctl %s on the rollbook service", action),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return systemctl(cmd, action, serviceName)
		},
	}
}

func systemctl(cmd *cobra.Command, args ...string) error {
	if err := runCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), "systemctl", args...); err != nil {
		return fmt.Errorf("systemctl %s failed: %w", args[0], err)
	}
	return nil
}

// renderSystemdUnit builds the unit file for the REST server
func renderSystemdUnit(cfg *config.Config, configPath, user, binary string) string {
	return fmt.Sprintf(`[Unit]
Description=rollbook student record server
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s serve --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, binary, configPath, cfg.DataDir, filepath.Dir(configPath))
}
