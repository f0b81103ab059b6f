package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/veikko/comicshelf/internal/models"
	"github.com/veikko/comicshelf/internal/repository"
	"github.com/veikko/comicshelf/internal/searchutil"
)

type CatalogHandler struct {
	publishers *repository.PublisherRepository
	volumes    *repository.VolumeRepository
	issues     *repository.IssueRepository
}

func NewCatalogHandler(db *sql.DB) *CatalogHandler {
	return &CatalogHandler{
		publishers: repository.NewPublisherRepository(db),
		volumes:    repository.NewVolumeRepository(db),
		issues:     repository.NewIssueRepository(db),
	}
}

func (h *CatalogHandler) ListPublishers(c *fiber.Ctx) error {
	publishers, err := h.publishers.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list publishers"})
	}

	if query := c.Query("q"); query != "" {
		filtered := make([]models.Publisher, 0, len(publishers))
		normalized := searchutil.Normalize(query)
		tokens := searchutil.TokenizeNormalized(normalized)
		for _, publisher := range publishers {
			if searchutil.MatchesQuery(publisher.Name, normalized, tokens) {
				filtered = append(filtered, publisher)
			}
		}
		publishers = filtered
	}

	return c.JSON(publishers)
}

func (h *CatalogHandler) GetPublisher(c *fiber.Ctx) error {
	publisher, err := h.publishers.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load publisher"})
	}
	if publisher == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "publisher not found"})
	}
	return c.JSON(publisher)
}

func (h *CatalogHandler) ListVolumes(c *fiber.Ctx) error {
	volumes, err := h.volumes.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list volumes"})
	}

	if query := c.Query("q"); query != "" {
		filtered := make([]models.Volume, 0, len(volumes))
		normalized := searchutil.Normalize(query)
		tokens := searchutil.TokenizeNormalized(normalized)
		for _, volume := range volumes {
			if searchutil.MatchesQuery(volume.Name, normalized, tokens) {
				filtered = append(filtered, volume)
			}
		}
		volumes = filtered
	}

	return c.JSON(volumes)
}

func (h *CatalogHandler) ListVolumesByPublisher(c *fiber.Ctx) error {
	volumes, err := h.volumes.ListByPublisher(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list volumes"})
	}
	return c.JSON(volumes)
}

func (h *CatalogHandler) GetVolume(c *fiber.Ctx) error {
	volume, err := h.volumes.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load volume"})
	}
	if volume == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "volume not found"})
	}
	return c.JSON(volume)
}

func (h *CatalogHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.issues.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list issues"})
	}
	return c.JSON(issues)
}

func (h *CatalogHandler) ListIssuesByVolume(c *fiber.Ctx) error {
	issues, err := h.issues.ListByVolume(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list issues"})
	}
	return c.JSON(issues)
}

func (h *CatalogHandler) ListCachedIssues(c *fiber.Ctx) error {
	cached, err := h.issues.ListCached()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list cached issues"})
	}
	return c.JSON(cached)
}

func (h *CatalogHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.issues.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load issue"})
	}
	if issue == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "issue not found"})
	}
	return c.JSON(issue)
}

type readStatusRequest struct {
	IsRead      bool `json:"isRead"`
	CurrentPage int  `json:"currentPage"`
}

// SetReadStatus is the local mutation path: it stamps the change with the
// current UTC time, which the next sync pass uses for conflict resolution.
func (h *CatalogHandler) SetReadStatus(c *fiber.Ctx) error {
	var req readStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	if req.CurrentPage < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "currentPage must not be negative"})
	}

	id := c.Params("id")
	issue, err := h.issues.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load issue"})
	}
	if issue == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "issue not found"})
	}

	status, err := h.issues.SetReadStatus(id, req.IsRead, req.CurrentPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to update read status"})
	}
	return c.JSON(status)
}
