package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestApplyEnv(t *testing.T) {
	t.Run("env file", func(t *testing.T) {
		path := writeEnvFile(t, "ROLLBOOK_DATA_DIR=/srv/rollbook\nROLLBOOK_PORT=9090\nROLLBOOK_DECODER=quoted\n# comment\nOTHER=x\n")

		c := DefaultConfig()
		require.NoError(t, ApplyEnv(c, path))

		assert.Equal(t, "/srv/rollbook", c.DataDir)
		assert.Equal(t, 9090, c.Port)
		assert.Equal(t, "quoted", c.Storage.Decoder)
		assert.Equal(t, "file", c.Storage.Backend)
	})

	t.Run("process environment wins", func(t *testing.T) {
		path := writeEnvFile(t, "ROLLBOOK_BACKEND=pebble\nROLLBOOK_API_KEY=from-file\n")
		t.Setenv(EnvBackend, "sqlite")

		c := DefaultConfig()
		require.NoError(t, ApplyEnv(c, path))

		assert.Equal(t, "sqlite", c.Storage.Backend)
		assert.Equal(t, "from-file", c.Security.APIKey)
	})

	t.Run("postgres dsn", func(t *testing.T) {
		t.Setenv(EnvBackend, "postgres")
		t.Setenv(EnvDSN, "host=localhost user=rollbook dbname=rollbook")

		c := DefaultConfig()
		require.NoError(t, ApplyEnv(c, ""))

		assert.Equal(t, "host=localhost user=rollbook dbname=rollbook", c.Storage.DSN)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		c := DefaultConfig()
		require.NoError(t, ApplyEnv(c, filepath.Join(t.TempDir(), "absent.env")))
		assert.Equal(t, DefaultConfig(), c)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv(EnvPort, "eighty")

		err := ApplyEnv(DefaultConfig(), "")
		assert.ErrorContains(t, err, EnvPort)
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Setenv(EnvDecoder, "csv")

		err := ApplyEnv(DefaultConfig(), "")
		assert.ErrorContains(t, err, "invalid storage decoder")
	})
}
