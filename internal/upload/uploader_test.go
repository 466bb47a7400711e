package upload

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
)

type formCapture struct {
	fields      map[string]string
	order       []string
	fileName    string
	fileType    string
	fileData    string
	contentType string
	auth        string
}

func captureForm(t *testing.T, r *http.Request) formCapture {
	t.Helper()
	c := formCapture{fields: map[string]string{}, contentType: r.Header.Get("Content-Type"), auth: r.Header.Get("Authorization")}
	_, params, err := mime.ParseMediaType(c.contentType)
	require.NoError(t, err)
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		c.order = append(c.order, part.FormName())
		if part.FileName() != "" {
			c.fileName = part.FileName()
			c.fileType = part.Header.Get("Content-Type")
			c.fileData = string(data)
			continue
		}
		c.fields[part.FormName()] = string(data)
	}
	return c
}

func testConfig(t *testing.T, endpoint, body, urlPath string) Config {
	t.Helper()
	tpl, err := ParseTemplate(body)
	require.NoError(t, err)
	headers, err := ParseHeaders(`{"Authorization": "Bearer secret"}`)
	require.NoError(t, err)
	return Config{Endpoint: endpoint, Headers: headers, Body: tpl, URLPath: urlPath, Timeout: 5 * time.Second}
}

func TestUpload_Success(t *testing.T) {
	var got formCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		got = captureForm(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data": {"links": [{"href": "https://img.example/x.png"}]}}`)
	}))
	defer srv.Close()

	u := New(testConfig(t, srv.URL, `{"key": "k1", "image": "$FILE", "n": 2}`, "data.links[0].href"), nil, nil)
	url, err := u.Upload(context.Background(), []byte("PNGDATA"), "shot.png")
	require.NoError(t, err)
	require.Equal(t, "https://img.example/x.png", url)

	require.True(t, strings.HasPrefix(got.contentType, "multipart/form-data"))
	require.Equal(t, "Bearer secret", got.auth)
	require.Equal(t, []string{"key", "image", "n"}, got.order)
	require.Equal(t, map[string]string{"key": "k1", "n": "2"}, got.fields)
	require.Equal(t, "shot.png", got.fileName)
	require.Equal(t, "image/png", got.fileType)
	require.Equal(t, "PNGDATA", got.fileData)
}

func TestUpload_FieldPathMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data": {}}`)
	}))
	defer srv.Close()

	u := New(testConfig(t, srv.URL, "", "data.url"), nil, nil)
	url, err := u.Upload(context.Background(), []byte("x"), "a.png")
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestUpload_NullURLField(t *testing.T) {
	p := &recordingPoster{body: `{"data": {"url": null}}`}
	tpl, err := ParseTemplate("")
	require.NoError(t, err)

	u := New(Config{Endpoint: "x", Body: tpl, URLPath: "data.url"}, p, nil)
	url, err := u.Upload(context.Background(), []byte("x"), "a.png")
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestUpload_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	u := New(testConfig(t, srv.URL, "", "url"), nil, nil)
	_, err := u.Upload(context.Background(), []byte("x"), "a.png")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryUpload, ce.Category())
}

func TestUpload_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	u := New(testConfig(t, srv.URL, "", "url"), nil, nil)
	_, err := u.Upload(context.Background(), []byte("x"), "a.png")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryUpload))
}

func TestUpload_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	u := New(testConfig(t, endpoint, "", "url"), nil, nil)
	_, err := u.Upload(context.Background(), []byte("x"), "a.png")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryUpload, ce.Category())
	require.True(t, errors.HasCategory(ce.Cause(), errors.CategoryNetwork))
}

type recordingPoster struct {
	headers map[string]string
	body    string
}

func (p *recordingPoster) Post(_ context.Context, _ string, _ []byte, headers map[string]string) ([]byte, error) {
	p.headers = headers
	if p.body != "" {
		return []byte(p.body), nil
	}
	return []byte(`{"url": "u"}`), nil
}

func TestUpload_ContentTypeOverride(t *testing.T) {
	tpl, err := ParseTemplate("")
	require.NoError(t, err)

	p := &recordingPoster{}
	u := New(Config{Endpoint: "x", Body: tpl, URLPath: "url",
		Headers: map[string]string{"content-type": "application/octet-stream"}}, p, nil)
	_, err = u.Upload(context.Background(), nil, "a.png")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"content-type": "application/octet-stream"}, p.headers)

	u = New(Config{Endpoint: "x", Body: tpl, URLPath: "url"}, p, nil)
	_, err = u.Upload(context.Background(), nil, "a.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p.headers["Content-Type"], "multipart/form-data; boundary="))
}

func TestUpload_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"url": "u"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := New(testConfig(t, srv.URL, "", "url"), nil, nil)
	_, err := u.Upload(ctx, []byte("x"), "a.png")
	require.Error(t, err)
}
