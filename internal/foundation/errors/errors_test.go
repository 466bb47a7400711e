package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "imgup.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().Get("file")
		if !exists || file != "imgup.yaml" {
			t.Errorf("expected context file=imgup.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := UploadError("endpoint rejected upload").Build()
		wrapped := fmt.Errorf("note a.md: %w", inner)

		if !HasCategory(wrapped, CategoryUpload) {
			t.Error("expected wrapped error to have upload category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected plain errors to default to internal")
		}
		if inner.IsFatal() {
			t.Error("expected upload error to be non-fatal")
		}
	})

	t.Run("Detail includes sorted context", func(t *testing.T) {
		err := ValidationError("bad template").
			WithContext("field", "upload.body").
			WithContext("attempt", 1).
			Build()
		want := "[validation] bad template attempt=1 field=upload.body"
		if got := err.Detail(); got != want {
			t.Errorf("Detail() = %q, want %q", got, want)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrap keeps cause", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := WrapError(originalErr, CategoryNetwork, "post failed").
			Warning().
			WithContext("host", "example.com").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Error() != "[network] post failed: connection refused" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"UploadError", UploadError("test"), CategoryUpload, SeverityError},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx := make(ErrorContext).Set("key1", "value1").Set("key1", "overridden")

	value, ok := ctx.Get("key1")
	if !ok || value != "overridden" {
		t.Errorf("expected key1=overridden, got %v", value)
	}
	if _, ok := ErrorContext(nil).Get("missing"); ok {
		t.Error("expected nil context lookup to miss")
	}
	if got := ErrorContext(nil).Set("k", 1); got["k"] != 1 {
		t.Errorf("expected Set on nil context to allocate, got %v", got)
	}
}
