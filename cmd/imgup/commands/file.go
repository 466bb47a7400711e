package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/imgup/internal/document"
	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/logfields"
	"git.home.luguber.info/inful/imgup/internal/markdown"
	"git.home.luguber.info/inful/imgup/internal/resolver"
	"git.home.luguber.info/inful/imgup/internal/upload"
)

// FileCmd implements the 'file' command.
type FileCmd struct {
	Path     string `arg:"" type:"path" help:"Image file to upload"`
	Markdown bool   `short:"m" help:"Print an image embed instead of the bare URL"`
	Into     string `type:"path" help:"Insert the uploaded image into this note"`
	Line     int    `help:"1-based line the image is inserted before (default: end of note)"`
}

func (f *FileCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, nil, nil, g.logger())
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return f.run(ctx, s, g.out())
}

func (f *FileCmd) run(ctx context.Context, s *session, out io.Writer) error {
	data, name, err := readImage(f.Path)
	if err != nil {
		return err
	}
	if f.Line < 0 {
		return errors.ValidationError("--line must be positive").Build()
	}

	if f.Into == "" {
		url, err := s.uploadBytes(ctx, data, name)
		if err != nil {
			return err
		}
		if f.Markdown {
			_, _ = fmt.Fprintln(out, markdown.ImageMarkdown("", url))
		} else {
			_, _ = fmt.Fprintln(out, url)
		}
		return nil
	}

	url, err := f.insert(ctx, s, data, name)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Inserted %s into %s\n", url, f.Into)
	return nil
}

// insert writes a placeholder line into the note, uploads, and then replaces
// the placeholder with the image embed. On failure the placeholder is removed.
func (f *FileCmd) insert(ctx context.Context, s *session, data []byte, name string) (string, error) {
	doc, err := document.Load(f.Into)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read note").
			WithContext("note", f.Into).
			Build()
	}
	line := doc.LineCount()
	switch {
	case f.Line > 0:
		line = f.Line - 1
	case doc.Line(line-1) == "":
		// Appending goes before the empty line that follows a final newline.
		line--
	}
	if line > doc.LineCount() {
		return "", errors.ValidationError("--line is past the end of the note").
			WithContext("line", f.Line).
			WithContext("lines", doc.LineCount()).
			Build()
	}

	placeholder := markdown.ImageMarkdown("uploading...", uuid.NewString())
	if err := doc.InsertLine(line, placeholder); err != nil {
		return "", errors.InternalError("failed to insert placeholder").WithCause(err).Build()
	}
	if err := saveNote(doc, f.Into); err != nil {
		return "", err
	}

	url, upErr := s.uploadBytes(ctx, data, name)
	if upErr != nil {
		if err := doc.RemoveLine(line); err == nil {
			_ = saveNote(doc, f.Into)
		}
		return "", upErr
	}

	if _, err := markdown.ReplaceFirst(doc, line, placeholder, markdown.ImageMarkdown("", url)); err != nil {
		return "", errors.InternalError("failed to replace placeholder").WithCause(err).Build()
	}
	if err := saveNote(doc, f.Into); err != nil {
		return "", err
	}
	return url, nil
}

// uploadBytes resizes when configured and uploads one payload. A response
// without a URL at the configured path is an error here.
func (s *session) uploadBytes(ctx context.Context, data []byte, name string) (string, error) {
	if s.resizer != nil {
		processed, err := s.resizer.Process(data, name)
		if err != nil {
			s.logger.Warn("Resize failed, uploading original", logfields.RawPath(name), logfields.Error(err))
		}
		data = processed
	}
	url, err := s.uploader.Upload(ctx, data, name)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", errors.UploadError("upload response did not contain a URL").
			WithContext("url_path", s.cfg.Upload.URLPath).
			Build()
	}
	s.logger.Info("Uploaded file",
		logfields.RawPath(name),
		logfields.Digest(upload.Digest(data)),
		logfields.Bytes(len(data)),
		logfields.URL(url))
	return url, nil
}

func readImage(path string) ([]byte, string, error) {
	name := filepath.Base(path)
	ext := resolver.NormalizeExtension(filepath.Ext(name))
	if ext == "" {
		return nil, "", errors.ValidationError("file has no extension").WithContext("path", path).Build()
	}
	if !resolver.IsImageExtension(ext) {
		return nil, "", errors.ValidationError("unsupported image extension "+ext).
			WithContext("path", path).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read image").
			WithContext("path", path).
			Build()
	}
	slog.Debug("Read image", logfields.AssetPath(path), logfields.Bytes(len(data)))
	return data, name, nil
}

func saveNote(doc *document.Buffer, path string) error {
	if err := doc.Save(path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to save note").
			WithContext("note", path).
			Build()
	}
	return nil
}
