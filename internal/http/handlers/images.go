package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/veikko/comicshelf/internal/cache"
)

type ImagesHandler struct {
	images *cache.ImageCache
}

func NewImagesHandler(images *cache.ImageCache) *ImagesHandler {
	return &ImagesHandler{images: images}
}

// Get serves a cached cover image. A miss is 404; the UI shows its
// placeholder.
func (h *ImagesHandler) Get(c *fiber.Ctx) error {
	path, ok := h.images.Path(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "image not cached"})
	}
	return c.SendFile(path)
}
