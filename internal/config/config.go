// Package config loads tool configuration from defaults, environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variable overrides, e.g.
	// FORMSCHEMA_DB or FORMSCHEMA_LOGLEVEL.
	EnvPrefix = "FORMSCHEMA"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form schema importer.
type Config struct {
	// Database configuration
	DatabasePath string

	// Input configuration
	PDFDirectory string
	MetadataPath string
	MaxFileSize  int64 // Maximum PDF file size in bytes

	// Application configuration
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		DatabasePath: "", // empty means the store's own default location
		PDFDirectory: currentDir,
		MetadataPath: "",
		MaxFileSize:  DefaultMaxFileSize,
		LogLevel:     DefaultLogLevel,
	}
}

// Load resolves the effective configuration from defaults, FORMSCHEMA_*
// environment variables and the already-parsed flag set, then validates it.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setupEnvironment(v, cfg)
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}
	populate(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupEnvironment configures viper with environment variables and defaults.
func setupEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("db", cfg.DatabasePath)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("metadata", cfg.MetadataPath)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("loglevel", cfg.LogLevel)
}

// bindFlags binds the command's flags to viper so flags override both
// defaults and environment variables. Flags the command does not define
// are skipped.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for _, name := range []string{"db", "dir", "metadata", "maxfilesize", "loglevel"} {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(name, flag); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}
	return nil
}

// populate fills the config struct with values from viper.
func populate(v *viper.Viper, cfg *Config) {
	cfg.DatabasePath = v.GetString("db")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.MetadataPath = v.GetString("metadata")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.LogLevel = v.GetString("loglevel")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
