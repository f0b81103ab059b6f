package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/veikko/comicshelf/internal/cache"
	"github.com/veikko/comicshelf/internal/config"
	"github.com/veikko/comicshelf/internal/database"
	"github.com/veikko/comicshelf/internal/extract"
	"github.com/veikko/comicshelf/internal/notifications"
	"github.com/veikko/comicshelf/internal/remote"
	"github.com/veikko/comicshelf/internal/repository"
	syncengine "github.com/veikko/comicshelf/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "comicshelf",
	Short: "Mirror a remote comics library and read it offline",
	Long: `comicshelf keeps a local mirror of a remote comics-library server:
it syncs the catalog into SQLite, caches covers and comic files on disk,
and unpacks comics into page images for reading.`,
	SilenceUsage: true,
}

// app wires every service once per invocation; nothing in the core relies
// on package-level state.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB

	publishers *repository.PublisherRepository
	volumes    *repository.VolumeRepository
	issues     *repository.IssueRepository

	catalog  *remote.Client
	images   *cache.ImageCache
	comics   *cache.ComicService
	engine   *syncengine.Engine
	notifier notifications.Notifier
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("COMICS_SERVER_URL is not configured")
	}

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	if err := database.ApplyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	notifier := buildNotifier(cfg, logger)
	catalog := remote.NewClient(cfg.ServerURL, cfg.Username, cfg.Password)
	extractor := extract.New(cfg.PageWidth, logger)

	a := &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		publishers: repository.NewPublisherRepository(db),
		volumes:    repository.NewVolumeRepository(db),
		issues:     repository.NewIssueRepository(db),
		catalog:    catalog,
		images:     cache.NewImageCache(cfg.CacheDir, catalog),
		notifier:   notifier,
	}
	a.comics = cache.NewComicService(cfg.CacheDir, repository.NewComicRepository(db), catalog, extractor, notifier, logger)
	a.engine = syncengine.NewEngine(catalog, a.publishers, a.volumes, a.issues, a.comics, a.images, logger)

	if err := a.comics.Repair(); err != nil {
		a.Close()
		return nil, fmt.Errorf("repair comic cache: %w", err)
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}

func buildNotifier(cfg config.Config, logger *slog.Logger) notifications.Notifier {
	log := notifications.NewLogNotifier(logger)
	if cfg.WebhookURL == "" {
		return log
	}

	webhook, err := notifications.NewWebhookNotifier(cfg.WebhookURL)
	if err != nil {
		logger.Warn("webhook notifier disabled", "error", err)
		return log
	}
	return notifications.NewMultiNotifier(log, webhook)
}
