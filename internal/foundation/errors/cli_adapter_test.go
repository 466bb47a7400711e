package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("invalid flag").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"upload", UploadError("rejected").Build(), 8},
		{"filesystem", FileSystemError("unreadable").Build(), 11},
		{"internal", InternalError("boom").Build(), 10},
		{"unclassified", errors.New("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	internal := InternalError("nil document").Build()
	if got := quiet.FormatError(internal); got != "Internal error occurred (use -v for details)" {
		t.Errorf("unexpected quiet internal message: %q", got)
	}

	cfg := ConfigError("missing endpoint").WithContext("file", "imgup.yaml").Build()
	if got := quiet.FormatError(cfg); got != "Error: [config] missing endpoint" {
		t.Errorf("unexpected quiet message: %q", got)
	}
	if got := verbose.FormatError(cfg); !strings.Contains(got, "file=imgup.yaml") {
		t.Errorf("expected verbose message to include context, got %q", got)
	}
	if got := quiet.FormatError(errors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected unclassified message: %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing endpoint").Build())

	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "missing endpoint") {
		t.Errorf("expected message on output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=config") {
		t.Errorf("expected fatal error to be logged, got %q", logs.String())
	}
}
