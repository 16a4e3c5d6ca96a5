package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/service"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// ModelsHandler exposes the model catalogue and per-model social actions.
type ModelsHandler struct {
	models *service.ModelService
	social *service.SocialService
}

// NewModelsHandler constructs handler.
func NewModelsHandler(models *service.ModelService, social *service.SocialService) *ModelsHandler {
	return &ModelsHandler{models: models, social: social}
}

// List handles GET /api/models.
func (h *ModelsHandler) List(c *fiber.Ctx) error {
	models, pagination, err := h.models.List(c.UserContext(), modelQueryFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       modelResponses(models),
		"pagination": paginationResponse(pagination),
	})
}

// Get handles GET /api/models/:id.
func (h *ModelsHandler) Get(c *fiber.Ctx) error {
	model, err := h.models.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": modelResponse(model)})
}

// Create handles POST /api/models.
func (h *ModelsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateModelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	model, err := h.models.Create(c.UserContext(), actorFrom(c), service.ModelInput{
		Title:        req.Title,
		Description:  req.Description,
		FileURL:      req.FileURL,
		ThumbnailURL: req.ThumbnailURL,
		IsPublic:     req.IsPublic,
		Tags:         req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": modelResponse(model)})
}

// Update handles PATCH /api/models/:id and PATCH /api/admin/models/:id.
func (h *ModelsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateModelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	in := service.ModelInput{
		Title:        req.Title,
		Description:  req.Description,
		FileURL:      req.FileURL,
		ThumbnailURL: req.ThumbnailURL,
		IsPublic:     req.IsPublic,
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
		in.SetTags = true
	}

	model, err := h.models.Update(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": modelResponse(model)})
}

// Delete handles DELETE /api/models/:id and DELETE /api/admin/models/:id.
func (h *ModelsHandler) Delete(c *fiber.Ctx) error {
	if err := h.models.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Download handles POST /api/models/:id/download.
func (h *ModelsHandler) Download(c *fiber.Ctx) error {
	fileURL, count, err := h.models.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"file_url": fileURL, "download_count": count})
}

// ListAll handles GET /api/admin/models, which includes private models.
func (h *ModelsHandler) ListAll(c *fiber.Ctx) error {
	models, pagination, err := h.models.ListAll(c.UserContext(), modelQueryFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       modelResponses(models),
		"pagination": paginationResponse(pagination),
	})
}

// Like handles POST /api/models/:id/like.
func (h *ModelsHandler) Like(c *fiber.Ctx) error {
	state, err := h.social.Like(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{Liked: state.Liked, LikeCount: state.LikeCount})
}

// Unlike handles DELETE /api/models/:id/like.
func (h *ModelsHandler) Unlike(c *fiber.Ctx) error {
	state, err := h.social.Unlike(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{Liked: state.Liked, LikeCount: state.LikeCount})
}

// LikeStatus handles GET /api/models/:id/like.
func (h *ModelsHandler) LikeStatus(c *fiber.Ctx) error {
	state, err := h.social.LikeStatus(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{Liked: state.Liked, LikeCount: state.LikeCount})
}

// Favorite handles POST /api/models/:id/favorite.
func (h *ModelsHandler) Favorite(c *fiber.Ctx) error {
	if err := h.social.Favorite(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": true})
}

// Unfavorite handles DELETE /api/models/:id/favorite.
func (h *ModelsHandler) Unfavorite(c *fiber.Ctx) error {
	if err := h.social.Unfavorite(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": false})
}

// FavoriteStatus handles GET /api/models/:id/favorite.
func (h *ModelsHandler) FavoriteStatus(c *fiber.Ctx) error {
	favorited, err := h.social.FavoriteStatus(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}

func modelQueryFrom(c *fiber.Ctx) service.ModelQuery {
	return service.ModelQuery{
		OwnerID: c.Query("owner"),
		Tag:     c.Query("tag"),
		Query:   c.Query("q"),
		Sort:    domain.ModelSort(c.Query("sort")),
		Page:    pageFrom(c),
	}
}
