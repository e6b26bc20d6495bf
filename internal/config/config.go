// Package config loads the transcription proxy configuration from a YAML
// file with environment overrides. The upstream API key never lives in the
// file; it comes from the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete proxy configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	Port        int    `yaml:"port"`
	Address     string `yaml:"address"`
	MaxBodySize int64  `yaml:"max_body_size"` // bytes
}

// UpstreamConfig contains the speech-to-text vendor configuration. APIKey is
// populated from DEEPGRAM_API_KEY and is never serialized.
type UpstreamConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Timeout  int    `yaml:"timeout"` // seconds
	APIKey   string `yaml:"-"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:        8264,
			Address:     "127.0.0.1",
			MaxBodySize: 64 << 20,
		},
		Upstream: UpstreamConfig{
			Endpoint: "https://api.deepgram.com/v1/listen",
			Model:    "nova-2",
			Language: "es-419",
			Timeout:  90,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file if path is non-empty, applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("VOZNOTA_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := os.Getenv("VOZNOTA_HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("VOZNOTA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}
	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if h.MaxBodySize < 1024 {
		return fmt.Errorf("max_body_size must be at least 1024 bytes, got %d", h.MaxBodySize)
	}
	return nil
}

// Validate validates upstream configuration.
func (u *UpstreamConfig) Validate() error {
	if u.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if u.APIKey == "" {
		return fmt.Errorf("DEEPGRAM_API_KEY environment variable is not set")
	}
	if u.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if u.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", u.Timeout)
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}
	return nil
}

// GetTimeoutDuration returns the upstream timeout as a time.Duration.
func (u *UpstreamConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}
