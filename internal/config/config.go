// Package config provides configuration management for the research terminal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Terminal  TerminalConfig  `mapstructure:"terminal"`
	Providers ProviderConfig  `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Export    ExportConfig    `mapstructure:"export"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TerminalConfig holds interactive-session configuration. These are the
// feature flags handed to menus at construction; nothing reads them from
// process-wide state.
type TerminalConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	Charts       bool   `mapstructure:"charts"`
	Flair        string `mapstructure:"flair"`
}

// ProviderConfig holds upstream API settings.
type ProviderConfig struct {
	FinnhubKey  string        `mapstructure:"finnhub_key"`
	FinBrainKey string        `mapstructure:"finbrain_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// CacheConfig holds the candle cache settings.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ExportConfig holds data-export settings.
type ExportConfig struct {
	Dir           string `mapstructure:"dir"`
	DefaultFormat string `mapstructure:"default_format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".finterm"
	}
	return filepath.Join(home, ".config", "finterm")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultConfigDir()
	return &Config{
		Terminal: TerminalConfig{
			ColorEnabled: true,
			Charts:       true,
			Flair:        "🚀",
		},
		Providers: ProviderConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (compatible; finterm/0.1)",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "cache.db"),
			TTL:     6 * time.Hour,
		},
		Export: ExportConfig{
			Dir:           filepath.Join(dir, "exports"),
			DefaultFormat: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: false,
		},
	}
}

// Load reads configuration from the given directory, falling back to the
// default directory and then to built-in defaults when no file exists.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("FINTERM")
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No file is fine; env vars and defaults apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("terminal.color_enabled", cfg.Terminal.ColorEnabled)
	v.SetDefault("terminal.charts", cfg.Terminal.Charts)
	v.SetDefault("terminal.flair", cfg.Terminal.Flair)
	v.SetDefault("providers.timeout", cfg.Providers.Timeout)
	v.SetDefault("providers.user_agent", cfg.Providers.UserAgent)
	v.SetDefault("providers.finnhub_key", "")
	v.SetDefault("providers.finbrain_key", "")
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.default_format", cfg.Export.DefaultFormat)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive, got %s", c.Providers.Timeout)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path must be set when cache is enabled")
	}
	switch c.Export.DefaultFormat {
	case "", "csv", "json", "tsv":
	default:
		return fmt.Errorf("export.default_format must be one of csv, json, tsv or empty, got %q", c.Export.DefaultFormat)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
