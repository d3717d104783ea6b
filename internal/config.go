// Package internal provides the application initialization and runtime
// wiring.
package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Search SearchConfig      `yaml:"search"`
	Watch  WatchConfig       `yaml:"watch"`
}

// NewDefaultConfig returns the configuration defaults.
func NewDefaultConfig() *Config {
	return &Config{
		App:   ApplicationConfig{LogLevel: slog.LevelInfo},
		Vault: VaultConfig{Path: "vault"},
		Search: SearchConfig{
			FuzzyMaxDistance: 3,
			FuzzyTolerance:   0.7,
		},
		Watch: WatchConfig{Enabled: true},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Search.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the corpus root directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SearchConfig tunes the fuzzy matcher.
type SearchConfig struct {
	FuzzyMaxDistance int     `yaml:"fuzzy_max_distance"`
	FuzzyTolerance   float64 `yaml:"fuzzy_tolerance"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FuzzyMaxDistance, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.FuzzyTolerance, validation.Required, validation.Min(0.1), validation.Max(1.0)),
	)
}

// WatchConfig controls the file-system watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}
