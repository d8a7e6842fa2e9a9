package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/spf13/viper"
)

const appName = "cachegen"

// Config holds all application configuration
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	History  HistoryConfig  `mapstructure:"history"`
	State    StateConfig    `mapstructure:"state"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DefaultsConfig holds the selections the UI starts with
type DefaultsConfig struct {
	Category string `mapstructure:"category"` // images, sounds, music, mods, advert
	Mode     string `mapstructure:"mode"`     // "single" or "pack"
}

// HistoryConfig holds save journal configuration
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // BoltDB file; empty keeps history in memory
}

// StateConfig locates the key=value file remembering last-used directories
type StateConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // empty disables logging
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Category: domain.CategoryImages.String(),
			Mode:     domain.ModeIndividual.String(),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(defaultDataPath(), "history.db"),
		},
		State: StateConfig{
			File: filepath.Join(defaultConfigPath(), "state.env"),
		},
		Logging: LoggingConfig{
			File:  "",
			Level: "INFO",
		},
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// newViper returns a viper instance with defaults and env overrides registered.
// Defaults must be set for every key so CACHEGEN_* variables reach Unmarshal.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("defaults.category", defaults.Defaults.Category)
	v.SetDefault("defaults.mode", defaults.Defaults.Mode)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("state.file", defaults.State.File)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)

	// Environment variable overrides: CACHEGEN_HISTORY_PATH etc.
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from the default config directory,
// the working directory and the environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first of dirs that has one.
// A missing file is not an error.
func LoadConfigFrom(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, defaultConfigPath())
}

// SaveConfigTo writes cfg to config.yaml in dir
func SaveConfigTo(cfg *Config, dir string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("defaults.category", cfg.Defaults.Category)
	v.Set("defaults.mode", cfg.Defaults.Mode)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)
	v.Set("state.file", cfg.State.File)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultCategory parses the configured starting category
func (c *Config) DefaultCategory() (domain.Category, error) {
	return domain.ParseCategory(c.Defaults.Category)
}

// DefaultMode parses the configured starting output mode
func (c *Config) DefaultMode() (domain.OutputMode, error) {
	return domain.ParseOutputMode(c.Defaults.Mode)
}

// HistoryPath returns the journal location, or "" for an in-memory journal
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	return ExpandHome(c.History.Path)
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
