package upload

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
)

// DefaultTimeout bounds a single upload request.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 4 << 20

// Poster sends a request body and returns the response body of a 2xx reply.
type Poster interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error)
}

// HTTPPoster implements Poster with net/http.
type HTTPPoster struct {
	client *http.Client
}

// NewHTTPPoster returns a poster whose requests time out after timeout.
func NewHTTPPoster(timeout time.Duration) *HTTPPoster {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPPoster{client: &http.Client{Timeout: timeout}}
}

// Post issues a POST request. Non-2xx replies are returned as upload errors
// carrying the status and a snippet of the response.
func (p *HTTPPoster) Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.UploadError("failed to create request").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NetworkError("upload request failed").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.UploadError("upload endpoint returned "+resp.Status).
			WithContext("status", resp.StatusCode).
			WithContext("url", url).
			WithContext("response", strings.ReplaceAll(string(limited), "\n", " ")).
			Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NetworkError("failed to read upload response").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	return data, nil
}
