// Package config loads and validates the imgup YAML configuration.
package config

import (
	"time"

	"git.home.luguber.info/inful/imgup/internal/upload"
)

// CurrentVersion is the only supported configuration version.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version string        `yaml:"version"`
	Upload  UploadConfig  `yaml:"upload"`
	Vault   VaultConfig   `yaml:"vault"`
	Resize  ResizeConfig  `yaml:"resize,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
}

// UploadConfig describes the image host.
type UploadConfig struct {
	Endpoint string `yaml:"endpoint"`
	// Headers is a JSON object of request headers.
	Headers string `yaml:"headers,omitempty"`
	// Body is a JSON object template; the value "$FILE" marks the file field.
	Body    string `yaml:"body,omitempty"`
	URLPath string `yaml:"url_path"`
	Timeout string `yaml:"timeout,omitempty"` // duration, e.g. "30s"
}

// VaultConfig selects the notes and assets imgup works on.
type VaultConfig struct {
	Root           string   `yaml:"root"`
	Include        []string `yaml:"include,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
	SkipCodeBlocks bool     `yaml:"skip_code_blocks,omitempty"`
}

// ResizeConfig controls the optional downscale before upload.
type ResizeConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxWidth int  `yaml:"max_width,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce      string `yaml:"debounce,omitempty"`       // duration, e.g. "2s"
	SweepSchedule string `yaml:"sweep_schedule,omitempty"` // cron expression
	SweepInterval string `yaml:"sweep_interval,omitempty"` // duration, e.g. "1h"
}

// TimeoutDuration returns the parsed upload timeout. Validation guarantees it parses.
func (u UploadConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(u.Timeout)
	if err != nil || d <= 0 {
		return upload.DefaultTimeout
	}
	return d
}

// DebounceDuration returns the parsed watch debounce.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

// SweepIntervalDuration returns the parsed sweep interval, or zero when unset.
func (w WatchConfig) SweepIntervalDuration() time.Duration {
	d, err := time.ParseDuration(w.SweepInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// UploadSettings converts the upload section into uploader configuration.
func (c *Config) UploadSettings() (upload.Config, error) {
	body, err := upload.ParseTemplate(c.Upload.Body)
	if err != nil {
		return upload.Config{}, err
	}
	headers, err := upload.ParseHeaders(c.Upload.Headers)
	if err != nil {
		return upload.Config{}, err
	}
	return upload.Config{
		Endpoint: c.Upload.Endpoint,
		Headers:  headers,
		Body:     body,
		URLPath:  c.Upload.URLPath,
		Timeout:  c.Upload.TimeoutDuration(),
	}, nil
}
