package config

import (
	"time"

	"git.home.luguber.info/inful/imgup/internal/imaging"
	"git.home.luguber.info/inful/imgup/internal/upload"
)

const (
	defaultTimeout       = "30s"
	defaultDebounce      = 2 * time.Second
	defaultMetricsListen = ":9464"
)

var (
	defaultInclude = []string{"**/*.md"}
	defaultExclude = []string{".obsidian/**", ".trash/**"}
)

// applyDefaults fills unset fields after normalization.
func applyDefaults(c *Config) {
	if c.Upload.Body == "" {
		c.Upload.Body = upload.DefaultBody
	}
	if c.Upload.Timeout == "" {
		c.Upload.Timeout = defaultTimeout
	}

	if c.Vault.Root == "" {
		c.Vault.Root = "."
	}
	if c.Vault.Include == nil {
		c.Vault.Include = append([]string(nil), defaultInclude...)
	}
	if c.Vault.Exclude == nil {
		c.Vault.Exclude = append([]string(nil), defaultExclude...)
	}

	if c.Resize.MaxWidth == 0 {
		c.Resize.MaxWidth = imaging.DefaultMaxWidth
	}

	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}

	if c.Metrics.Listen == "" {
		c.Metrics.Listen = defaultMetricsListen
	}

	if c.Watch.Debounce == "" {
		c.Watch.Debounce = defaultDebounce.String()
	}
}
