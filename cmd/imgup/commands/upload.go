package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/pipeline"
	"git.home.luguber.info/inful/imgup/internal/upload"
	"git.home.luguber.info/inful/imgup/internal/vault"
)

// UploadCmd implements the 'upload' command.
type UploadCmd struct {
	Notes  []string `arg:"" optional:"" type:"path" help:"Notes to process (default: every included note in the vault)"`
	From   int      `help:"First line to process, 1-based"`
	To     int      `help:"Last line to process, 1-based and inclusive"`
	DryRun bool     `name:"dry-run" help:"Show what would be uploaded without uploading or rewriting"`
}

func (u *UploadCmd) Run(g *Global, root *CLI) error {
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
	return u.run(ctx, s, g.out())
}

func (u *UploadCmd) run(ctx context.Context, s *session, out io.Writer) error {
	r := noteRange{From: u.From, To: u.To}
	if err := r.validate(); err != nil {
		return err
	}
	notes, err := s.notes(u.Notes)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		_, _ = fmt.Fprintln(out, "No notes found")
		return nil
	}

	if u.DryRun {
		return u.plan(s, notes, r, out)
	}

	started := time.Now()
	var total pipeline.RunResult
	for _, note := range notes {
		result, err := s.processNote(ctx, note, r)
		if err != nil {
			return err
		}
		total.Add(result)
		if result.Total() > 0 {
			_, _ = fmt.Fprintf(out, "%s: %s\n", vault.SourceID(s.index.Root(), note), result)
		}
	}
	total.Duration = time.Since(started)

	_, _ = fmt.Fprintf(out, "Total: %s (%d uploads in %s)\n", total, total.Uploads, total.Duration.Round(time.Millisecond))
	if total.Fail > 0 {
		return errors.UploadError(fmt.Sprintf("%d image reference(s) failed", total.Fail)).
			Warning().
			WithContext("fail", total.Fail).
			Build()
	}
	return nil
}

func (u *UploadCmd) plan(s *session, notes []string, r noteRange, out io.Writer) error {
	var total pipeline.RunResult
	for _, note := range notes {
		plan, err := s.planNote(note, r)
		if err != nil {
			return err
		}
		total.Add(plan.RunResult)
		id := vault.SourceID(s.index.Root(), note)
		for _, p := range plan.Planned {
			_, _ = fmt.Fprintf(out, "%s:%d: %s -> %s (%s)\n", id, p.Line+1, p.RawPath, p.AssetPath, upload.ContentType(p.AssetPath))
		}
	}
	_, _ = fmt.Fprintf(out, "Dry run: %s (%d uploads planned)\n", total, total.Uploads)
	return nil
}
