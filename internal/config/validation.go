package config

import (
	"time"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/jsonpath"
	"git.home.luguber.info/inful/imgup/internal/upload"
	"git.home.luguber.info/inful/imgup/internal/vault"
	"git.home.luguber.info/inful/imgup/internal/watch"
)

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(c *Config) error {
	v := &configurationValidator{config: c}
	for _, step := range []func() error{
		v.validateVersion,
		v.validateUpload,
		v.validateVault,
		v.validateResize,
		v.validateWatch,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validateVersion() error {
	if cv.config.Version != CurrentVersion {
		return errors.ValidationError("unsupported configuration version").
			WithContext("version", cv.config.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateUpload() error {
	u := cv.config.Upload
	if u.Endpoint == "" {
		return errors.ValidationError("upload.endpoint is required").Build()
	}
	if u.URLPath == "" {
		return errors.ValidationError("upload.url_path is required").Build()
	}
	if _, err := jsonpath.ParsePath(u.URLPath); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "upload.url_path is invalid").Fatal().Build()
	}
	if _, err := upload.ParseHeaders(u.Headers); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "upload.headers must be a JSON object").Fatal().Build()
	}
	body, err := upload.ParseTemplate(u.Body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "upload.body must be a JSON object").Fatal().Build()
	}
	if !body.HasFile() {
		return errors.ValidationError("upload.body has no \"$FILE\" field").Build()
	}
	if err := validateDuration("upload.timeout", u.Timeout); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateVault() error {
	if err := vault.ValidatePatterns(cv.config.Vault.Include); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid vault.include pattern").Fatal().Build()
	}
	if err := vault.ValidatePatterns(cv.config.Vault.Exclude); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid vault.exclude pattern").Fatal().Build()
	}
	return nil
}

func (cv *configurationValidator) validateResize() error {
	r := cv.config.Resize
	if r.Enabled && r.MaxWidth <= 0 {
		return errors.ValidationError("resize.max_width must be positive").
			WithContext("max_width", r.MaxWidth).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	if err := validateDuration("watch.debounce", cv.config.Watch.Debounce); err != nil {
		return err
	}
	if expr := cv.config.Watch.SweepSchedule; expr != "" {
		if err := watch.ValidateSchedule(expr); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "watch.sweep_schedule is not a valid cron expression").
				Fatal().
				WithContext("schedule", expr).
				Build()
		}
	}
	if raw := cv.config.Watch.SweepInterval; raw != "" {
		if err := validateDuration("watch.sweep_interval", raw); err != nil {
			return err
		}
	}
	return nil
}

func validateDuration(field, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, field+" is not a valid duration").
			Fatal().
			WithContext("value", raw).
			Build()
	}
	if d <= 0 {
		return errors.ValidationError(field+" must be positive").WithContext("value", raw).Build()
	}
	return nil
}
