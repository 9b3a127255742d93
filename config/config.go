// Package config loads optional TOML settings for webpconv. Values that are
// left unset keep their defaults; command line flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/lepinkainen/webpconv/webp"
)

const (
	DefaultQuality   = 80
	DefaultLogFile   = "logs/webpconv.log"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds settings that used to be fixed in the script
type Config struct {
	EncoderPath string   `toml:"encoder_path"`
	Extensions  []string `toml:"extensions"`
	Workers     int      `toml:"workers"`
	LogFile     string   `toml:"log_file"`
	LogLevel    string   `toml:"log_level"`
	LogFormat   string   `toml:"log_format"`
	LaunchRate  float64  `toml:"launch_rate"`
	MetricsFile string   `toml:"metrics_file"`
}

// Default returns the built-in configuration
func Default() *Config {
	exts := make([]string, len(webp.DefaultExtensions))
	copy(exts, webp.DefaultExtensions)
	return &Config{
		Extensions: exts,
		LogFile:    DefaultLogFile,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.merge(&file)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// merge copies every value set in other over c
func (c *Config) merge(other *Config) {
	if other.EncoderPath != "" {
		c.EncoderPath = other.EncoderPath
	}
	if len(other.Extensions) > 0 {
		c.Extensions = other.Extensions
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.LaunchRate != 0 {
		c.LaunchRate = other.LaunchRate
	}
	if other.MetricsFile != "" {
		c.MetricsFile = other.MetricsFile
	}
}

func (c *Config) normalize() {
	c.EncoderPath = strings.TrimSpace(c.EncoderPath)
	c.Extensions = webp.NormalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		c.Extensions = Default().Extensions
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.LaunchRate < 0 {
		errs = append(errs, fmt.Errorf("launch_rate must be >= 0, got %g", c.LaunchRate))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unsupported value %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: unsupported value %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ValidateQuality checks the encoder quality range
func ValidateQuality(q int) error {
	if q < 0 || q > 100 {
		return fmt.Errorf("image quality must be between 0 and 100, got %d", q)
	}
	return nil
}
