// Package config loads and validates application configuration.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Autosave AutosaveConfig `mapstructure:"autosave" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AutosaveConfig tunes the debounced name auto-save pipeline.
type AutosaveConfig struct {
	// DebounceMillis is the quiet period after the last keystroke before
	// a name value is committed.
	DebounceMillis int `mapstructure:"debounce_millis" validate:"required,gt=0"`
}

// Debounce returns the configured quiet period as a duration.
func (c AutosaveConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}
