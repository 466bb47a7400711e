// Package pipeline drives an upload run over a document: it scans each line for
// image references, resolves and uploads local images once per raw path, and
// rewrites the references with the returned URLs.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/imgup/internal/document"
	"git.home.luguber.info/inful/imgup/internal/logfields"
	"git.home.luguber.info/inful/imgup/internal/markdown"
	"git.home.luguber.info/inful/imgup/internal/metrics"
	"git.home.luguber.info/inful/imgup/internal/resolver"
	"git.home.luguber.info/inful/imgup/internal/upload"
)

// Document is the editable text a run works on.
type Document interface {
	markdown.LineEditor
	LineCount() int
	Cursor() document.Position
}

// Resolver classifies a raw reference path.
type Resolver interface {
	Resolve(rawPath string, wiki bool, sourceID string) resolver.Resolution
}

// Uploader turns bytes into a hosted URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// Preprocessor may transform image bytes before upload.
type Preprocessor interface {
	Process(data []byte, filename string) ([]byte, error)
}

// Request selects what a run processes.
type Request struct {
	// SourceID identifies the note for index lookups.
	SourceID string
	// Start and End are 0-based inclusive line indexes. End < 0 means the last line.
	Start, End int
	// SkipLines holds line indexes that are never scanned.
	SkipLines map[int]bool
}

// Orchestrator runs the scan, resolve, upload and rewrite sequence.
type Orchestrator struct {
	resolver   Resolver
	uploader   Uploader
	fs         resolver.FileSystem
	preprocess Preprocessor
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFileSystem replaces the byte reader used for resolved assets.
func WithFileSystem(fs resolver.FileSystem) Option {
	return func(o *Orchestrator) { o.fs = fs }
}

// WithPreprocessor installs a hook that runs on bytes before upload.
func WithPreprocessor(p Preprocessor) Option {
	return func(o *Orchestrator) { o.preprocess = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator.
func New(res Resolver, up Uploader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: res,
		uploader: up,
		fs:       resolver.OSFileSystem{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run holds the mutable state of one invocation.
type run struct {
	ctx    context.Context
	doc    Document
	req    Request
	cache  *UploadCache
	result RunResult
	log    *slog.Logger
}

// Run processes the requested lines of doc and returns the tally. Per-match
// failures are counted, never returned. The cursor is restored when the run
// ends. Once ctx is done, matches that still need an upload count as failures.
func (o *Orchestrator) Run(ctx context.Context, doc Document, req Request) RunResult {
	started := time.Now()
	r := &run{
		ctx:    ctx,
		doc:    doc,
		req:    req,
		cache:  NewUploadCache(),
		result: RunResult{RunID: uuid.NewString()},
	}
	r.log = o.logger.With(logfields.RunID(r.result.RunID), logfields.Note(req.SourceID))
	cursor := doc.Cursor()

	start, end := lineRange(doc.LineCount(), req.Start, req.End)
	for i := start; i <= end; i++ {
		if req.SkipLines[i] {
			continue
		}
		scan := markdown.ScanLine(doc.Line(i), i)
		for range scan.Dropped {
			r.log.Debug("Dropped malformed image reference", logfields.Line(i+1))
			o.count(r, metrics.ResultIgnore)
		}
		for _, ref := range scan.References {
			o.process(r, ref)
		}
	}

	doc.SetCursor(cursor)
	r.result.Duration = time.Since(started)
	o.recorder.ObserveRunDuration(r.result.Duration)
	r.log.Info("Run complete",
		slog.Int("success", r.result.Success),
		slog.Int("fail", r.result.Fail),
		slog.Int("ignore", r.result.Ignore),
		slog.Int("uploads", r.result.Uploads),
		logfields.DurationMS(float64(r.result.Duration.Microseconds())/1000))
	return r.result
}

func (o *Orchestrator) process(r *run, ref markdown.LinkReference) {
	log := r.log.With(logfields.Line(ref.Line+1), logfields.RawPath(ref.RawPath))

	if url, ok := r.cache.Get(ref.RawPath); ok {
		o.recorder.IncCacheHit()
		log.Debug("Reusing uploaded URL", logfields.URL(url))
		o.rewrite(r, ref, url, log)
		return
	}

	asset, reason, ok := o.classify(ref, r.req.SourceID)
	if !ok {
		log.Debug("Ignoring image reference", logfields.Reason(reason))
		o.count(r, metrics.ResultIgnore)
		return
	}
	log = log.With(logfields.AssetPath(asset.AbsolutePath))

	data, err := o.fs.ReadFile(asset.AbsolutePath)
	if err != nil {
		log.Warn("Failed to read image", logfields.Error(err))
		o.count(r, metrics.ResultFail)
		return
	}

	if o.preprocess != nil {
		processed, perr := o.preprocess.Process(data, asset.Name)
		if perr != nil {
			log.Warn("Preprocessing failed; uploading original bytes", logfields.Error(perr))
		} else {
			data = processed
		}
	}

	if err := r.ctx.Err(); err != nil {
		log.Warn("Run canceled before upload", logfields.Error(err))
		o.count(r, metrics.ResultFail)
		return
	}

	r.result.Uploads++
	began := time.Now()
	url, err := o.uploader.Upload(r.ctx, data, asset.Name)
	elapsed := time.Since(began)
	o.recorder.ObserveUploadDuration(elapsed, err == nil)
	if err != nil {
		log.Warn("Upload failed", logfields.Error(err),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		o.count(r, metrics.ResultFail)
		return
	}
	log.Info("Uploaded image",
		logfields.URL(url),
		logfields.Bytes(len(data)),
		logfields.Digest(upload.Digest(data)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))

	r.cache.Put(ref.RawPath, url)
	o.rewrite(r, ref, url, log)
}

// classify resolves ref to an uploadable asset or gives the ignore reason.
func (o *Orchestrator) classify(ref markdown.LinkReference, sourceID string) (resolver.Asset, string, bool) {
	if resolver.IsRemote(ref.RawPath) {
		return resolver.Asset{}, "remote", false
	}
	asset, ok := resolver.AssetOf(o.resolver.Resolve(ref.RawPath, ref.IsWiki(), sourceID))
	if !ok {
		return resolver.Asset{}, "unresolved", false
	}
	if !resolver.IsImageExtension(asset.Extension) {
		return resolver.Asset{}, "unsupported_extension", false
	}
	return asset, "", true
}

// rewrite replaces the reference text and counts the match as a success. The
// upload already happened, so a missing occurrence is only logged.
func (o *Orchestrator) rewrite(r *run, ref markdown.LinkReference, url string, log *slog.Logger) {
	found, err := markdown.ReplaceFirst(r.doc, ref.Line, ref.SourceText, markdown.ImageMarkdown(ref.Tag, url))
	switch {
	case err != nil:
		log.Warn("Failed to rewrite image reference", logfields.Error(err))
	case !found:
		log.Warn("Image reference no longer on line; nothing rewritten")
	}
	o.count(r, metrics.ResultSuccess)
}

func (o *Orchestrator) count(r *run, result metrics.ResultLabel) {
	switch result {
	case metrics.ResultSuccess:
		r.result.Success++
	case metrics.ResultFail:
		r.result.Fail++
	default:
		r.result.Ignore++
	}
	o.recorder.IncMatchResult(result)
}

// lineRange clamps [start, end] to a document of n lines. It returns an empty
// range (start > end) when nothing is left.
func lineRange(n, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end < 0 || end >= n {
		end = n - 1
	}
	return start, end
}
