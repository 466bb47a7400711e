package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/logfields"
	"git.home.luguber.info/inful/imgup/internal/metrics"
	"git.home.luguber.info/inful/imgup/internal/vault"
	"git.home.luguber.info/inful/imgup/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Sweep bool `help:"Process every included note once before watching"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	logger := g.logger()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		server, err := metrics.Listen(cfg.Metrics.Listen, reg, logger)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to listen for metrics").
				WithContext("listen", cfg.Metrics.Listen).
				Build()
		}
		go server.Serve()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", logfields.Error(err))
			}
		}()
	}

	s, err := newSession(cfg, nil, recorder, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return w.run(ctx, s)
}

// run watches until ctx is done.
func (w *WatchCmd) run(ctx context.Context, s *session) error {
	watcher, err := watch.New(watch.Config{
		Root:     s.index.Root(),
		Include:  s.cfg.Vault.Include,
		Exclude:  s.cfg.Vault.Exclude,
		Debounce: s.cfg.Watch.DebounceDuration(),
	}, s.handleChange, s.logger)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to start watcher").Build()
	}

	sweep := func() {
		notes, err := s.notes(nil)
		if err != nil {
			s.logger.Warn("Sweep failed", logfields.Error(err))
			return
		}
		for _, note := range notes {
			watcher.Enqueue(note)
		}
		s.logger.Debug("Sweep queued notes", slog.Int("notes", len(notes)))
	}

	expr, interval := s.cfg.Watch.SweepSchedule, s.cfg.Watch.SweepIntervalDuration()
	if expr != "" || interval > 0 {
		scheduler, err := watch.NewScheduler()
		if err != nil {
			return errors.InternalError("failed to create scheduler").WithCause(err).Build()
		}
		if expr != "" {
			if _, err := scheduler.ScheduleCron("sweep", expr, sweep); err != nil {
				return errors.WrapError(err, errors.CategoryConfig, "invalid sweep schedule").
					WithContext("sweep_schedule", expr).
					Build()
			}
			s.logger.Info("Sweep scheduled", slog.String("schedule", expr))
		}
		if interval > 0 {
			if _, err := scheduler.ScheduleEvery("sweep-interval", interval, sweep); err != nil {
				return errors.WrapError(err, errors.CategoryConfig, "invalid sweep interval").
					WithContext("sweep_interval", interval.String()).
					Build()
			}
			s.logger.Info("Sweep scheduled", slog.Duration("interval", interval))
		}
		scheduler.Start(ctx)
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				s.logger.Warn("Scheduler stop failed", logfields.Error(err))
			}
		}()
	}

	if w.Sweep {
		go func() {
			select {
			case <-watcher.Ready():
				sweep()
			case <-ctx.Done():
			}
		}()
	}

	if err := watcher.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		return errors.WrapError(err, errors.CategoryFileSystem, "watcher stopped").Build()
	}
	s.logger.Info("Watch stopped")
	return nil
}

// handleChange refreshes the index so new assets resolve, then processes the
// whole note.
func (s *session) handleChange(ctx context.Context, note string) {
	if err := s.index.Refresh(); err != nil {
		s.logger.Warn("Index refresh failed", logfields.Error(err))
	}
	if _, err := s.processNote(ctx, note, noteRange{}); err != nil {
		s.logger.Error("Processing note failed", logfields.Note(vault.SourceID(s.index.Root(), note)), logfields.Error(err))
	}
}
