package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration.
const (
	DefaultDriverName     = "agresso"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvURL               = "MADGRESSO_URL"
	EnvUsername          = "MADGRESSO_USERNAME"
	EnvPassword          = "MADGRESSO_PASSWORD"
	EnvProxy             = "MADGRESSO_PROXY"
	EnvDefaultAccount    = "MADGRESSO_DEFAULT_ACCOUNT"
	EnvDefaultSubproject = "MADGRESSO_DEFAULT_SUBPROJECT"
)

// DefaultPath returns ~/.config/madgresso/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "madgresso", "config.yaml")
	}
	return filepath.Join(home, ".config", "madgresso", "config.yaml")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ExpenseTypes: ExpenseTypes{},
		Driver: DriverConfig{
			Name: DefaultDriverName,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// An empty variable counts as unset.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = &v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		c.Proxy = &v
	}
	if v := os.Getenv(EnvDefaultAccount); v != "" {
		c.DefaultAccount = &v
	}
	if v := os.Getenv(EnvDefaultSubproject); v != "" {
		c.DefaultSubproject = v
	}
}
