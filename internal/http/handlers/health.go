package handlers

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veikko/comicshelf/internal/cache"
)

// HealthHandler reports the two local dependencies a reader needs: the
// mirror database and the cache directory on disk.
type HealthHandler struct {
	db     *sql.DB
	images *cache.ImageCache
}

func NewHealthHandler(db *sql.DB, images *cache.ImageCache) *HealthHandler {
	return &HealthHandler{db: db, images: images}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbState := "up"
	if err := h.db.Ping(); err != nil {
		dbState = "down"
	}

	cacheState := "up"
	if _, err := h.images.Dir(); err != nil {
		cacheState = "down"
	}

	status := "ok"
	code := fiber.StatusOK
	if dbState == "down" || cacheState == "down" {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"db":     dbState,
		"cache":  cacheState,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
