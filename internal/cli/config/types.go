// Package config provides configuration management for the AskSQL CLI.
package config

import (
	"os"
	"path/filepath"
)

// UIConfig holds configuration for the interactive client.
type UIConfig struct {
	AltScreen bool `koanf:"alt_screen" yaml:"alt_screen" json:"alt_screen"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{AltScreen: true}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	return c.UI
}

// ServeConfig holds configuration for the page server.
type ServeConfig struct {
	Port     int  `koanf:"port" yaml:"port" json:"port"`
	AutoOpen bool `koanf:"auto_open" yaml:"auto_open" json:"auto_open"`
	Watch    bool `koanf:"watch" yaml:"watch" json:"watch"`
}

// DefaultServeConfig returns a ServeConfig with default values.
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{Port: DefaultServePort, AutoOpen: true}
}

// GetServeConfig returns the serve config with defaults applied for any unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return DefaultServeConfig()
	}
	return c.Serve
}

// Config holds all CLI configuration options.
type Config struct {
	APIURL       string       `koanf:"api_url" yaml:"api_url" json:"api_url"`
	StatePath    string       `koanf:"state_path" yaml:"state_path" json:"state_path"`
	LogFile      string       `koanf:"log_file" yaml:"log_file" json:"log_file"`
	Verbose      bool         `koanf:"verbose" yaml:"verbose" json:"verbose"`
	OutputFormat string       `koanf:"output" yaml:"output" json:"output"`
	UI           *UIConfig    `koanf:"ui" yaml:"ui,omitempty" json:"ui,omitempty"`
	Serve        *ServeConfig `koanf:"serve" yaml:"serve,omitempty" json:"serve,omitempty"`

	// SessionSecret signs the page server's cookies. It is never printed.
	SessionSecret string `koanf:"session_secret" yaml:"-" json:"-"`
}

// Default configuration values.
const (
	DefaultAPIURL     = "http://127.0.0.1:5000"
	DefaultOutput     = "text"
	DefaultConfigName = "asksql.yaml"
	DefaultServePort  = 8765
	appDir            = "asksql"
)

// DefaultStatePath returns the preferences database location under the
// user config directory.
func DefaultStatePath() string {
	return filepath.Join(userDir(os.UserConfigDir), "state.db")
}

// DefaultLogFile returns the TUI log file location under the user cache
// directory.
func DefaultLogFile() string {
	return filepath.Join(userDir(os.UserCacheDir), "asksql.log")
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil || dir == "" {
		return ".asksql"
	}
	return filepath.Join(dir, appDir)
}

// Defaults returns a config populated with default values.
func Defaults() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		StatePath:    DefaultStatePath(),
		LogFile:      DefaultLogFile(),
		OutputFormat: DefaultOutput,
		UI:           DefaultUIConfig(),
		Serve:        DefaultServeConfig(),
	}
}
