package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/service"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// TagsHandler lists tags publicly and manages them for admins.
type TagsHandler struct {
	tags *service.TagService
}

// NewTagsHandler constructs handler.
func NewTagsHandler(tags *service.TagService) *TagsHandler {
	return &TagsHandler{tags: tags}
}

// List handles GET /api/tags and GET /api/admin/tags.
func (h *TagsHandler) List(c *fiber.Ctx) error {
	tags, err := h.tags.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		items = append(items, tagResponse(&tags[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /api/admin/tags.
func (h *TagsHandler) Create(c *fiber.Ctx) error {
	var req dto.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.tags.Create(c.UserContext(), actorFrom(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tagResponse(tag)})
}

// Rename handles PATCH /api/admin/tags/:id.
func (h *TagsHandler) Rename(c *fiber.Ctx) error {
	var req dto.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.tags.Rename(c.UserContext(), actorFrom(c), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tagResponse(tag)})
}

// Delete handles DELETE /api/admin/tags/:id.
func (h *TagsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tags.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
