package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rollbook/pkg/config"
)

// stubSystem fakes root and records external commands
func stubSystem(t *testing.T, euid int) *[]string {
	t.Helper()

	var calls []string
	origEuid, origRun := geteuid, runCommand
	geteuid = func() int { return euid }
	runCommand = func(stdout, stderr io.Writer, command string, args ...string) error {
		calls = append(calls, command+" "+strings.Join(args, " "))
		return nil
	}
	t.Cleanup(func() {
		geteuid, runCommand = origEuid, origRun
	})
	return &calls
}

func TestRenderSystemdUnit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = "/var/lib/rollbook"

	unit := renderSystemdUnit(cfg, "/etc/rollbook/config.yaml", "rollbook", "/usr/local/bin/rollbook")

	assert.Contains(t, unit, "User=rollbook")
	assert.Contains(t, unit, "Group=rollbook")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/rollbook serve --config /etc/rollbook/config.yaml")
	assert.Contains(t, unit, "ReadWritePaths=/var/lib/rollbook")
	assert.Contains(t, unit, "ReadWritePaths=/etc/rollbook")
}

func TestServiceInstall(t *testing.T) {
	calls := stubSystem(t, 0)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	unitDir := filepath.Join(dir, "units")
	require.NoError(t, os.MkdirAll(unitDir, 0750))

	res := execute(t, nil, "", "service", "install",
		"--config", configPath, "--data-dir", filepath.Join(dir, "data"), "--unit-dir", unitDir)
	require.NoError(t, res.err, res.stderr)

	assert.FileExists(t, configPath)
	unit, err := os.ReadFile(filepath.Join(unitDir, serviceName))
	require.NoError(t, err)
	assert.Contains(t, string(unit), "serve --config "+configPath)

	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable rollbook.service",
		"systemctl start rollbook.service",
	}, *calls)
}

func TestServiceRequiresRoot(t *testing.T) {
	calls := stubSystem(t, 1000)

	res := execute(t, nil, "", "service", "install", "--config", filepath.Join(t.TempDir(), "c.yaml"))
	assert.ErrorContains(t, res.err, "root privileges")
	assert.Empty(t, *calls)
}

func TestServiceActions(t *testing.T) {
	calls := stubSystem(t, 1000)

	for _, action := range []string{"start", "stop", "restart", "status"} {
		res := execute(t, nil, "", "service", action)
		require.NoError(t, res.err)
	}
	res := execute(t, nil, "", "service", "logs", "-f", "-n", "20")
	require.NoError(t, res.err)

	assert.Equal(t, []string{
		"systemctl start rollbook.service",
		"systemctl stop rollbook.service",
		"systemctl restart rollbook.service",
		"systemctl status rollbook.service",
		"journalctl -u rollbook.service -f -n20",
	}, *calls)
}
