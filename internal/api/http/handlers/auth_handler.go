package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/observability"
	"github.com/vrcface/server/internal/service"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// AuthHandler exposes sign-up, sign-in and token verification.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": accountResponse(result.Account),
			"auth": dto.AuthResponse{Token: result.Session.Token, ExpiresAt: result.Session.ExpiresAt},
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"identity": dto.IdentityResponse{ID: result.Identity.ID, Email: result.Identity.Email},
		"auth":     dto.AuthResponse{Token: result.Session.Token, ExpiresAt: result.Session.ExpiresAt},
	}
	if result.Account != nil {
		data["user"] = accountResponse(result.Account)
	}
	return c.JSON(fiber.Map{"data": data})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, err := auth.ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Verify handles POST /api/auth/verify. Its body shape is consumed by the
// admin edge filter, so failures do not use the standard error envelope.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req auth.VerifyRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(http.StatusBadRequest).JSON(auth.VerifyResult{Error: "Token is required"})
	}

	v, err := h.auth.Verify(c.UserContext(), req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) || errors.Is(err, auth.ErrMissingCredential) {
			return c.Status(http.StatusUnauthorized).JSON(auth.VerifyResult{Error: "Invalid token"})
		}
		h.logger.Error("token verification failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(auth.VerifyResult{Error: "Internal server error"})
	}

	c.Locals(observability.IdentityLocalKey, v.Identity.ID)
	return c.JSON(auth.VerifyResult{
		Authenticated: true,
		User: &auth.VerifiedUser{
			ID:    v.Identity.ID,
			Email: v.Identity.Email,
			Role:  string(v.Role.Effective()),
		},
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := actorFrom(c)
	identity, account, err := h.auth.Me(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	data := fiber.Map{
		"identity": dto.IdentityResponse{ID: identity.ID, Email: identity.Email},
		"role":     actor.Role.Effective(),
		"user":     nil,
	}
	if account != nil {
		data["user"] = accountResponse(account)
	}
	return c.JSON(fiber.Map{"data": data})
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}
	if err := h.auth.ChangePassword(c.UserContext(), actorFrom(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
