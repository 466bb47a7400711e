package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/imgup/internal/config"
	"git.home.luguber.info/inful/imgup/internal/document"
	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/imaging"
	"git.home.luguber.info/inful/imgup/internal/logfields"
	"git.home.luguber.info/inful/imgup/internal/markdown"
	"git.home.luguber.info/inful/imgup/internal/metrics"
	"git.home.luguber.info/inful/imgup/internal/pipeline"
	"git.home.luguber.info/inful/imgup/internal/resolver"
	"git.home.luguber.info/inful/imgup/internal/upload"
	"git.home.luguber.info/inful/imgup/internal/vault"
)

// session holds the components one command invocation works with.
type session struct {
	cfg      *config.Config
	index    *vault.Index
	uploader *upload.Uploader
	resizer  *imaging.Resizer
	orch     *pipeline.Orchestrator
	logger   *slog.Logger
}

// newSession indexes the vault and wires resolver, uploader and orchestrator.
// A nil poster uses HTTP; a nil recorder records nothing.
func newSession(cfg *config.Config, poster upload.Poster, recorder metrics.Recorder, logger *slog.Logger) (*session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := vault.NewIndex(cfg.Vault.Root, cfg.Vault.Exclude)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to index vault").
			WithContext("root", cfg.Vault.Root).
			Build()
	}
	settings, err := cfg.UploadSettings()
	if err != nil {
		return nil, err
	}
	if poster == nil {
		poster = upload.NewHTTPPoster(settings.Timeout)
	}
	s := &session{
		cfg:      cfg,
		index:    index,
		uploader: upload.New(settings, poster, logger),
		logger:   logger,
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}
	if cfg.Resize.Enabled {
		s.resizer = imaging.NewResizer(cfg.Resize.MaxWidth)
		opts = append(opts, pipeline.WithPreprocessor(s.resizer))
		logger.Debug("Resize enabled", slog.Int("max_width", s.resizer.MaxWidth()))
	}
	res := resolver.New(index, resolver.OSFileSystem{}, index.Root())
	s.orch = pipeline.New(res, s.uploader, opts...)

	logger.Debug("Session ready",
		slog.String("root", index.Root()),
		slog.Int("indexed_files", index.Len()),
		slog.Bool("resize", cfg.Resize.Enabled))
	return s, nil
}

// noteRange is a 1-based inclusive line selection. Zero values mean unbounded.
type noteRange struct {
	From, To int
}

func (r noteRange) validate() error {
	if r.From < 0 || r.To < 0 {
		return errors.ValidationError("line numbers must be positive").Build()
	}
	if r.From > 0 && r.To > 0 && r.To < r.From {
		return errors.ValidationError("--to must not be before --from").
			WithContext("from", r.From).
			WithContext("to", r.To).
			Build()
	}
	return nil
}

func (s *session) request(note string, doc *document.Buffer, r noteRange) pipeline.Request {
	req := pipeline.Request{
		SourceID: vault.SourceID(s.index.Root(), note),
		End:      -1,
	}
	if r.From > 0 {
		req.Start = r.From - 1
	}
	if r.To > 0 {
		req.End = r.To - 1
	}
	if s.cfg.Vault.SkipCodeBlocks {
		req.SkipLines = markdown.CodeBlockLines([]byte(doc.String()))
	}
	return req
}

// processNote runs the orchestrator over one note and saves it when edited.
func (s *session) processNote(ctx context.Context, note string, r noteRange) (pipeline.RunResult, error) {
	doc, err := document.Load(note)
	if err != nil {
		return pipeline.RunResult{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read note").
			WithContext("note", note).
			Build()
	}
	result := s.orch.Run(ctx, doc, s.request(note, doc, r))
	if doc.Changed() {
		if err := doc.Save(note); err != nil {
			return result, errors.WrapError(err, errors.CategoryFileSystem, "failed to save note").
				WithContext("note", note).
				Build()
		}
	}
	s.logger.Info("Note processed",
		logfields.Note(note),
		logfields.RunID(result.RunID),
		slog.Int("success", result.Success),
		slog.Int("fail", result.Fail),
		slog.Int("ignore", result.Ignore),
		slog.Int("uploads", result.Uploads))
	return result, nil
}

// planNote reports what processNote would upload without touching the note.
func (s *session) planNote(note string, r noteRange) (pipeline.PlanResult, error) {
	doc, err := document.Load(note)
	if err != nil {
		return pipeline.PlanResult{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read note").
			WithContext("note", note).
			Build()
	}
	return s.orch.Plan(doc, s.request(note, doc, r)), nil
}

// notes returns args as given, or every included note in the vault.
func (s *session) notes(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	notes, err := vault.Notes(s.index.Root(), s.cfg.Vault.Include, s.cfg.Vault.Exclude)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list notes").Build()
	}
	return notes, nil
}
