package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments and warnings from normalization.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerations and trims free-form fields before
// defaults are applied. It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}

	c.Version = strings.TrimSpace(c.Version)
	c.Upload.Endpoint = strings.TrimSpace(c.Upload.Endpoint)
	c.Upload.URLPath = strings.TrimSpace(c.Upload.URLPath)
	c.Upload.Timeout = strings.TrimSpace(c.Upload.Timeout)
	c.Vault.Root = strings.TrimSpace(c.Vault.Root)
	c.Vault.Include = trimPatterns(c.Vault.Include)
	c.Vault.Exclude = trimPatterns(c.Vault.Exclude)
	c.Watch.Debounce = strings.TrimSpace(c.Watch.Debounce)
	c.Watch.SweepSchedule = strings.TrimSpace(c.Watch.SweepSchedule)
	c.Watch.SweepInterval = strings.TrimSpace(c.Watch.SweepInterval)

	normalizeLogging(&c.Logging, res)
	return res, nil
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := string(l.Level); raw != "" {
		lvl := NormalizeLogLevel(raw)
		switch {
		case lvl == "":
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(LogLevelInfo)))
			l.Level = LogLevelInfo
		case lvl != l.Level:
			res.Warnings = append(res.Warnings, warnChanged("logging.level", l.Level, lvl))
			l.Level = lvl
		}
	}
	if raw := string(l.Format); raw != "" {
		f := NormalizeLogFormat(raw)
		switch {
		case f == "":
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(LogFormatText)))
			l.Format = LogFormatText
		case f != l.Format:
			res.Warnings = append(res.Warnings, warnChanged("logging.format", l.Format, f))
			l.Format = f
		}
	}
}

// trimPatterns drops blank entries. A nil slice stays nil so defaults apply.
func trimPatterns(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("unknown %s '%s', using '%s'", field, value, fallback)
}
