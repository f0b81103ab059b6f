package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	syncengine "github.com/veikko/comicshelf/internal/sync"
)

type SyncHandler struct {
	engine *syncengine.Engine
}

func NewSyncHandler(engine *syncengine.Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// Trigger runs a sync pass inline. A pass already in flight is reported as
// a conflict, not queued.
func (h *SyncHandler) Trigger(c *fiber.Ctx) error {
	result, err := h.engine.Run(c.Context())
	if err != nil {
		if errors.Is(err, syncengine.ErrSyncRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "sync already running"})
		}
		return c.Status(remoteErrorStatus(err)).JSON(fiber.Map{"message": userMessage(err)})
	}
	return c.JSON(result)
}
