package upload

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/jsonpath"
	"git.home.luguber.info/inful/imgup/internal/logfields"
)

// Config is the read-only upload configuration.
type Config struct {
	Endpoint string
	Headers  map[string]string
	Body     Template
	URLPath  string
	Timeout  time.Duration
}

// Uploader turns image bytes into a hosted URL.
type Uploader struct {
	cfg    Config
	poster Poster
	logger *slog.Logger
}

// New creates an Uploader. A nil poster uses an HTTPPoster with cfg.Timeout.
func New(cfg Config, poster Poster, logger *slog.Logger) *Uploader {
	if poster == nil {
		poster = NewHTTPPoster(cfg.Timeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{cfg: cfg, poster: poster, logger: logger}
}

// Upload posts data as filename and returns the URL found at the configured
// field path. A response without that field, or with null there, yields ""
// and a warning.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	body, contentType, err := BuildBody(u.cfg.Body, data, filename)
	if err != nil {
		return "", err
	}

	headers := make(map[string]string, len(u.cfg.Headers)+1)
	override := false
	for k, v := range u.cfg.Headers {
		headers[k] = v
		if strings.EqualFold(k, "Content-Type") {
			override = true
		}
	}
	if !override {
		headers["Content-Type"] = contentType
	}

	resp, err := u.poster.Post(ctx, u.cfg.Endpoint, body, headers)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryUpload, "upload failed").
			WithContext("filename", filename).
			Build()
	}

	doc, err := jsonpath.Parse(resp)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryUpload, "upload response is not valid JSON").
			WithContext("filename", filename).
			Build()
	}

	value, ok := jsonpath.Lookup(doc, u.cfg.URLPath)
	if !ok || value.IsNull() {
		u.logger.Warn("Upload response has no value at url path",
			slog.String("url_path", u.cfg.URLPath),
			logfields.AssetPath(filename))
		return "", nil
	}
	return value.String(), nil
}
