/*
Package config
File: config.go
Description:
    Service configuration for the part container workshop.
    Values are layered: built-in defaults, then an optional YAML file,
    then PARTCONTAINER_* environment variables.
*/

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (e.g. PARTCONTAINER_LISTEN_ADDR).
const EnvPrefix = "PARTCONTAINER"

// Config holds every tunable of the service.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`  // HTTP listen address
	CatalogPath string `mapstructure:"catalog_path"` // Part catalog YAML
	SavePath    string `mapstructure:"save_path"`    // Workshop save file
	Autosave    bool   `mapstructure:"autosave"`     // Save after every container change
	LogLevel    string `mapstructure:"log_level"`    // debug, info, warn, error
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  ":8081",
		CatalogPath: "parts.yaml",
		SavePath:    "workshop.yaml",
		Autosave:    true,
		LogLevel:    "info",
	}
}

// Load resolves the configuration. An empty path skips the file layer;
// a path that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("catalog_path", defaults.CatalogPath)
	v.SetDefault("save_path", defaults.SavePath)
	v.SetDefault("autosave", defaults.Autosave)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.CatalogPath == "" {
		return errors.New("catalog_path must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
