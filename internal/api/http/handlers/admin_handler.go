package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/service"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// AdminHandler serves the back-office account and stats endpoints.
// Every route is mounted behind the admin guard.
type AdminHandler struct {
	accounts *service.AccountService
	stats    *service.StatsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{accounts: accounts, stats: stats}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	role := domain.RoleUnknown
	if raw := c.Query("role"); raw != "" {
		role = domain.ParseRole(raw)
		if !role.Valid() {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": raw})
		}
	}

	accounts, pagination, err := h.accounts.ListAccounts(c.UserContext(), c.Query("q"), role, pageFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       accountResponses(accounts),
		"pagination": paginationResponse(pagination),
	})
}

// UpdateUser handles PATCH /api/admin/users.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.AccountUpdate{
		Username:    req.Updates.Username,
		DisplayName: req.Updates.DisplayName,
		AvatarURL:   req.Updates.AvatarURL,
		Bio:         req.Updates.Bio,
		IsVerified:  req.Updates.IsVerified,
	}
	if req.Updates.Role != nil {
		role := domain.ParseRole(*req.Updates.Role)
		update.Role = &role
	}

	account, err := h.accounts.AdminUpdate(c.UserContext(), actorFrom(c), req.UserID, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// DeleteUser handles DELETE /api/admin/users. The target comes from the body
// or the userId query parameter.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	var req dto.AdminDeleteUserRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.UserID == "" {
		req.UserID = c.Query("userId")
	}

	if err := h.accounts.AdminDelete(c.UserContext(), actorFrom(c), req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Get(c.UserContext())
	if err != nil {
		return err
	}
	byRole := make(map[string]int64, len(stats.UsersByRole))
	for role, count := range stats.UsersByRole {
		byRole[string(role)] = count
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Users:       stats.Users,
		Models:      stats.Models,
		Tags:        stats.Tags,
		Likes:       stats.Likes,
		UsersByRole: byRole,
	}})
}
