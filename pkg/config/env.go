package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by ApplyEnv when no other file is named
const DefaultEnvFile = ".env"

// Environment variables read by ApplyEnv
const (
	EnvDataDir  = "ROLLBOOK_DATA_DIR"
	EnvPort     = "ROLLBOOK_PORT"
	EnvBind     = "ROLLBOOK_BIND"
	EnvAPIKey   = "ROLLBOOK_API_KEY"
	EnvBackend  = "ROLLBOOK_BACKEND"
	EnvDecoder  = "ROLLBOOK_DECODER"
	EnvDSN      = "ROLLBOOK_DSN"
	EnvLogLevel = "ROLLBOOK_LOG_LEVEL"
)

// ApplyEnv overrides config fields from ROLLBOOK_* variables. Variables set
// in the process environment win over those in envFile. A missing envFile is
// ignored.
func ApplyEnv(c *Config, envFile string) error {
	values := map[string]string{}
	if envFile != "" && ConfigExists(envFile) {
		fileValues, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		values = fileValues
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}

	fields := map[string]*string{
		EnvDataDir:  &c.DataDir,
		EnvBind:     &c.Bind,
		EnvAPIKey:   &c.Security.APIKey,
		EnvBackend:  &c.Storage.Backend,
		EnvDecoder:  &c.Storage.Decoder,
		EnvDSN:      &c.Storage.DSN,
		EnvLogLevel: &c.Logging.Level,
	}
	for key, field := range fields {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}

	return c.Validate()
}
