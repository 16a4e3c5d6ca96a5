package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/observability"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity *domain.Identity
	Role     domain.Role
}

// ID returns the caller's identity id.
func (p *Principal) ID() string {
	if p == nil || p.Identity == nil {
		return ""
	}
	return p.Identity.ID
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role.Satisfies(domain.RoleAdmin)
}

// Guard turns gate decisions into fiber middleware.
type Guard struct {
	gate *Gate
}

// NewGuard constructs the guard.
func NewGuard(gate *Gate) *Guard {
	return &Guard{gate: gate}
}

// RequireRole admits only callers whose role satisfies role. On routes that
// need an elevated role every denial is the same 403, so callers cannot tell a
// bad token from a missing privilege.
func (g *Guard) RequireRole(role domain.Role) fiber.Handler {
	if !role.Valid() {
		panic(fmt.Sprintf("auth: RequireRole called with unknown role %q", string(role)))
	}
	return func(c *fiber.Ctx) error {
		decision := g.gate.Authorize(c.UserContext(), c.Get(fiber.HeaderAuthorization), role)
		if !decision.Allowed {
			if role.Elevated() || decision.Reason == ReasonInsufficientRole {
				return apperrors.NewForbidden("insufficient permission")
			}
			return apperrors.NewUnauthorized("authentication required")
		}
		setPrincipal(c, decision)
		return c.Next()
	}
}

// RequireAuthenticated admits any verified caller.
func (g *Guard) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.gate.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if !decision.Allowed {
			return apperrors.NewUnauthorized("authentication required")
		}
		setPrincipal(c, decision)
		return c.Next()
	}
}

// OptionalIdentity attaches the caller when a valid token is presented and
// otherwise continues anonymously.
func (g *Guard) OptionalIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		decision := g.gate.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if decision.Allowed {
			setPrincipal(c, decision)
		}
		return c.Next()
	}
}

func setPrincipal(c *fiber.Ctx, decision Decision) {
	principal := &Principal{Identity: decision.Identity, Role: decision.Role}
	c.Locals(principalKey, principal)
	c.Locals(observability.IdentityLocalKey, principal.ID())
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
