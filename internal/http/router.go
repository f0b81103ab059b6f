// Package http exposes the mirrored library to local consumers (the reading
// UI, scripts): catalog queries, read-status mutation, download management,
// page serving, and a manual sync trigger.
package http

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/veikko/comicshelf/internal/cache"
	"github.com/veikko/comicshelf/internal/config"
	"github.com/veikko/comicshelf/internal/http/handlers"
	syncengine "github.com/veikko/comicshelf/internal/sync"
)

type Deps struct {
	DB     *sql.DB
	Engine *syncengine.Engine
	Comics *cache.ComicService
	Images *cache.ImageCache
}

func NewServer(cfg config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	health := handlers.NewHealthHandler(deps.DB, deps.Images)
	catalog := handlers.NewCatalogHandler(deps.DB)
	comics := handlers.NewComicsHandler(deps.DB, deps.Comics)
	images := handlers.NewImagesHandler(deps.Images)
	syncHandler := handlers.NewSyncHandler(deps.Engine)

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/publishers", catalog.ListPublishers)
	v1.Get("/publishers/:id", catalog.GetPublisher)
	v1.Get("/publishers/:id/volumes", catalog.ListVolumesByPublisher)
	v1.Get("/volumes", catalog.ListVolumes)
	v1.Get("/volumes/:id", catalog.GetVolume)
	v1.Get("/volumes/:id/issues", catalog.ListIssuesByVolume)
	v1.Get("/issues", catalog.ListIssues)
	v1.Get("/issues/cached", catalog.ListCachedIssues)
	v1.Get("/issues/:id", catalog.GetIssue)
	v1.Put("/issues/:id/readstatus", catalog.SetReadStatus)
	v1.Post("/issues/:id/download", comics.Download)
	v1.Delete("/issues/:id/download", comics.DeleteDownload)
	v1.Get("/issues/:id/pages", comics.ListPages)
	v1.Get("/issues/:id/pages/:page", comics.GetPage)
	v1.Get("/images/:name", images.Get)
	v1.Post("/sync", syncHandler.Trigger)

	return app
}
