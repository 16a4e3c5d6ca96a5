package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/service"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// UsersHandler serves public profiles and the caller's social graph.
type UsersHandler struct {
	accounts *service.AccountService
	social   *service.SocialService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService, social *service.SocialService) *UsersHandler {
	return &UsersHandler{accounts: accounts, social: social}
}

// Profile handles GET /api/users/:username.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.accounts.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateMe handles PATCH /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.UpdateProfile(c.UserContext(), actorFrom(c), service.ProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// Follow handles POST /api/users/:id/follow.
func (h *UsersHandler) Follow(c *fiber.Ctx) error {
	if err := h.social.Follow(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"following": true})
}

// Unfollow handles DELETE /api/users/:id/follow.
func (h *UsersHandler) Unfollow(c *fiber.Ctx) error {
	if err := h.social.Unfollow(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"following": false})
}

// FollowStatus handles GET /api/users/:id/follow. Anonymous callers never follow anyone.
func (h *UsersHandler) FollowStatus(c *fiber.Ctx) error {
	following, err := h.social.IsFollowing(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"following": following})
}

// Favorites handles GET /api/users/me/favorites.
func (h *UsersHandler) Favorites(c *fiber.Ctx) error {
	models, pagination, err := h.social.Favorites(c.UserContext(), actorFrom(c), pageFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       modelResponses(models),
		"pagination": paginationResponse(pagination),
	})
}
