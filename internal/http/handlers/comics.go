package handlers

import (
	"database/sql"
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/veikko/comicshelf/internal/cache"
	"github.com/veikko/comicshelf/internal/extract"
	"github.com/veikko/comicshelf/internal/remote"
	"github.com/veikko/comicshelf/internal/repository"
)

type ComicsHandler struct {
	issues *repository.IssueRepository
	comics *cache.ComicService
}

func NewComicsHandler(db *sql.DB, comics *cache.ComicService) *ComicsHandler {
	return &ComicsHandler{
		issues: repository.NewIssueRepository(db),
		comics: comics,
	}
}

func (h *ComicsHandler) Download(c *fiber.Ctx) error {
	id := c.Params("id")

	issue, err := h.issues.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load issue"})
	}
	if issue == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "issue not found"})
	}

	comic, err := h.comics.Download(c.Context(), id)
	if err != nil {
		return c.Status(remoteErrorStatus(err)).JSON(fiber.Map{"message": userMessage(err)})
	}
	return c.Status(fiber.StatusCreated).JSON(comic)
}

func (h *ComicsHandler) DeleteDownload(c *fiber.Ctx) error {
	if err := h.comics.Delete(c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to delete cached comic"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ComicsHandler) ListPages(c *fiber.Ctx) error {
	pages, err := h.comics.Pages(c.Params("id"))
	if err != nil {
		return c.Status(extractErrorStatus(err)).JSON(fiber.Map{"message": userMessage(err)})
	}

	names := make([]string, 0, len(pages))
	for _, page := range pages {
		names = append(names, filepath.Base(page))
	}
	return c.JSON(names)
}

func (h *ComicsHandler) GetPage(c *fiber.Ctx) error {
	pages, err := h.comics.Pages(c.Params("id"))
	if err != nil {
		return c.Status(extractErrorStatus(err)).JSON(fiber.Map{"message": userMessage(err)})
	}

	requested := filepath.Base(c.Params("page"))
	for _, page := range pages {
		if filepath.Base(page) == requested {
			return c.SendFile(page)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "page not found"})
}

func remoteErrorStatus(err error) int {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, remote.ErrUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func extractErrorStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrUnsupportedArchive), errors.Is(err, extract.ErrArchiveEncrypted):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// userMessage maps the recoverable error classes onto the four distinct
// user-facing messages; anything else stays generic.
func userMessage(err error) string {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return "authorization failed"
	case errors.Is(err, remote.ErrUnavailable):
		return "no connection"
	case errors.Is(err, extract.ErrArchiveEncrypted):
		return "archive encrypted"
	case errors.Is(err, extract.ErrUnsupportedArchive):
		return "archive format unsupported"
	default:
		return "unexpected error"
	}
}
