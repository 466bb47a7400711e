package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
)

// Load reads, normalizes, defaults and validates a configuration file.
// Environment variables from .env/.env.local are loaded first and expanded
// into the YAML text.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse processes configuration YAML that has not been env-expanded yet.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config").Fatal().Build()
	}

	nres, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "normalize").Fatal().Build()
	}
	for _, w := range nres.Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}

	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Version: CurrentVersion,
		Upload: UploadConfig{
			Endpoint: "https://api.imgbb.com/1/upload",
			Headers:  `{"Accept": "application/json"}`,
			Body:     `{"key": "${IMGBB_API_KEY}", "image": "$FILE"}`,
			URLPath:  "data.url",
			Timeout:  defaultTimeout,
		},
		Vault: VaultConfig{
			Root:    ".",
			Include: defaultInclude,
			Exclude: defaultExclude,
		},
		Resize:  ResizeConfig{Enabled: false, MaxWidth: 4096},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics: MetricsConfig{Enabled: false, Listen: defaultMetricsListen},
		Watch:   WatchConfig{Debounce: defaultDebounce.String()},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
