// Package config loads factordb settings from a YAML file, FACTORDB_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/store"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// FACTORDB_DATABASE_PATH.
const EnvPrefix = "FACTORDB"

// Config holds all configuration for factordb.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Debug    DebugConfig    `mapstructure:"debug"`
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite file.
	Path string `mapstructure:"path"`
	// MaxConnections bounds concurrently checked-out connections.
	MaxConnections int `mapstructure:"max_connections"`
}

// LimitsConfig holds the engine's numeric limits.
type LimitsConfig struct {
	MaxNumberBits      int    `mapstructure:"max_number_bits"`
	ProvableBits       int    `mapstructure:"provable_bits"`
	ProbableBits       int    `mapstructure:"probable_bits"`
	TrialDivisionLimit uint64 `mapstructure:"trial_division_limit"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DebugConfig enables expensive self-checks.
type DebugConfig struct {
	ExtraChecks bool `mapstructure:"extra_checks"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           "factordb.db",
			MaxConnections: store.DefaultMaxConnections,
		},
		Limits: LimitsConfig{
			MaxNumberBits:      factordb.DefaultMaxNumberBits,
			ProvableBits:       factordb.DefaultProvableBits,
			ProbableBits:       factordb.DefaultProbableBits,
			TrialDivisionLimit: factordb.DefaultTrialDivisionLimit,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)

	v.SetDefault("limits.max_number_bits", defaults.Limits.MaxNumberBits)
	v.SetDefault("limits.provable_bits", defaults.Limits.ProvableBits)
	v.SetDefault("limits.probable_bits", defaults.Limits.ProbableBits)
	v.SetDefault("limits.trial_division_limit", defaults.Limits.TrialDivisionLimit)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("debug.extra_checks", defaults.Debug.ExtraChecks)
}

// NewViper returns a viper instance with defaults and environment
// overrides registered.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	// database.path -> FACTORDB_DATABASE_PATH
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads configFile into v. With an empty name the default
// locations are searched and a missing file is not an error.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return cfg, nil
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "factordb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "factordb")
}

// EngineConfig converts the limits into factordb.Config.
func (c *Config) EngineConfig() factordb.Config {
	return factordb.Config{
		MaxNumberBits:      c.Limits.MaxNumberBits,
		ProvableBits:       c.Limits.ProvableBits,
		ProbableBits:       c.Limits.ProbableBits,
		TrialDivisionLimit: c.Limits.TrialDivisionLimit,
		ExtraChecks:        c.Debug.ExtraChecks,
	}
}

// StoreOptions converts the database settings into store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{MaxConnections: c.Database.MaxConnections}
}

// LogLevel returns the slog level for Logging.Level. Unknown names map to
// Info; Validate rejects them earlier.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
