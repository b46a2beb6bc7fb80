/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the rollbook configuration
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Security Security `yaml:"security"`
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Storage selects where records are persisted and how lines are decoded
type Storage struct {
	Backend string `yaml:"backend"` // file, pebble, sqlite or postgres
	File    string `yaml:"file"`
	Decoder string `yaml:"decoder"` // naive or quoted
	DSN     string `yaml:"dsn,omitempty"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Storage: Storage{
			Backend: "file",
			File:    "students.txt",
			Decoder: "naive",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the YAML file at configPath over DefaultConfig, so
// fields missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "pebble", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage backend postgres requires storage.dsn")
		}
	default:
		return fmt.Errorf("invalid storage backend %q: expected file, pebble, sqlite or postgres", c.Storage.Backend)
	}

	switch c.Storage.Decoder {
	case "naive", "quoted":
	default:
		return fmt.Errorf("invalid storage decoder %q: expected naive or quoted", c.Storage.Decoder)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	return nil
}

// SaveConfig writes cfg as YAML. The file holds the API key, so it is
// created 0600 inside a 0750 directory.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateSecureKey returns n random bytes, hex encoded
func GenerateSecureKey(n int) (string, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// BootstrapConfig saves a default configuration with a fresh 256-bit API
// key. A non-empty dataDir replaces the default data directory.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	key, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	cfg.Security.APIKey = key

	if err := SaveConfig(cfg, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}
	return cfg, nil
}

// GetDefaultConfigPath returns rollbook/config.yaml under the user config
// directory, or ./rollbook.yaml when there is none.
func GetDefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./rollbook.yaml"
	}
	return filepath.Join(dir, "rollbook", "config.yaml")
}

// ConfigExists reports whether anything exists at configPath
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return err == nil
}
