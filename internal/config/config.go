// Package config provides Viper-based configuration management for fleetctl
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete fleetctl configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Bulk    BulkConfig    `mapstructure:"bulk"`
}

// APIConfig points at the FleetPass API
type APIConfig struct {
	URL string `mapstructure:"url"`
}

// SessionConfig controls where the login session is persisted
type SessionConfig struct {
	File string `mapstructure:"file"`
	// Persist false keeps the session in memory for the current process only
	Persist bool `mapstructure:"persist"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// BulkConfig contains bulk import settings
type BulkConfig struct {
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Search paths for .fleetctl.yaml
		v.SetConfigName(".fleetctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fleetctl")
	}

	// FLEETCTL_API_URL -> api.url
	v.SetEnvPrefix("FLEETCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.API.URL = strings.TrimRight(cfg.API.URL, "/")
	if cfg.Session.File == "" {
		cfg.Session.File = DefaultSessionFile()
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultSessionFile returns $HOME/.config/fleetctl/session.yaml, falling
// back to the working directory when no home is known
func DefaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fleetctl", "session.yaml")
	}
	return filepath.Join(home, ".config", "fleetctl", "session.yaml")
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8080")

	v.SetDefault("session.file", "")
	v.SetDefault("session.persist", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)

	v.SetDefault("bulk.redirect_delay", 2*time.Second)
}

// SetAPIURL replaces the API base URL, applying the same trimming and checks
// as a value read from the config file
func (c *Config) SetAPIURL(raw string) error {
	trimmed := strings.TrimRight(raw, "/")
	if err := validateAPIURL(trimmed); err != nil {
		return err
	}
	c.API.URL = trimmed
	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url: %q (must be an absolute http or https URL)", raw)
	}
	return nil
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if err := validateAPIURL(cfg.API.URL); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	if cfg.Bulk.RedirectDelay < 0 {
		return fmt.Errorf("invalid bulk redirect delay: %s", cfg.Bulk.RedirectDelay)
	}

	return nil
}
