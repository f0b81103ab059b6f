package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/veikko/comicshelf/internal/notifications"
	syncengine "github.com/veikko/comicshelf/internal/sync"
)

type syncRunner interface {
	Run(ctx context.Context) (syncengine.Result, error)
}

// Scheduler triggers a sync pass on a fixed interval. Overlap is impossible
// by construction (one goroutine) and the engine coalesces any extra
// trigger from elsewhere anyway.
type Scheduler struct {
	engine   syncRunner
	notifier notifications.Notifier
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

type Config struct {
	Interval time.Duration
}

func New(engine syncRunner, notifier notifications.Notifier, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		engine:   engine,
		notifier: notifier,
		interval: cfg.Interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("sync scheduler started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("initial sync failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("sync scheduler stopped")
				close(s.stopCh)
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					s.logger.Warn("scheduled sync failed", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-s.stopCh:
	case <-time.After(timeout):
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	result, err := s.engine.Run(ctx)
	if err != nil {
		if errors.Is(err, syncengine.ErrSyncRunning) {
			s.logger.Debug("sync already in flight, trigger coalesced")
			return nil
		}
		return fmt.Errorf("run sync: %w", err)
	}

	s.notify(ctx, notifications.Message{
		Event: notifications.EventSyncCompleted,
		Title: "Sync finished",
		Body: fmt.Sprintf("publishers +%d -%d, volumes +%d -%d, issues +%d -%d",
			result.Publishers.Added, result.Publishers.Deleted,
			result.Volumes.Added, result.Volumes.Deleted,
			result.Issues.Added, result.Issues.Deleted),
	})

	if result.Issues.Added > 0 {
		s.notify(ctx, notifications.Message{
			Event: notifications.EventNewIssues,
			Title: "New issues available",
			Body:  fmt.Sprintf("%d new issues synced", result.Issues.Added),
		})
	}

	return nil
}

func (s *Scheduler) notify(ctx context.Context, message notifications.Message) {
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.Warn("notification failed", "event", message.Event, "error", err)
	}
}
