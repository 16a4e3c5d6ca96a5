package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/observability"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

func newGuardApp(t *testing.T) *fiber.App {
	t.Helper()
	resolver := &fakeResolver{roles: map[string]domain.Role{
		"admin-1": domain.RoleAdmin,
		"user-1":  domain.RoleUser,
	}}
	guard := NewGuard(NewGate(tokensFor("admin-1", "user-1", "orphan"), resolver, nil))

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message, "code": de.Code})
	}})
	whoami := func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"id": "", "role": ""})
		}
		return c.JSON(fiber.Map{
			"id":     p.ID(),
			"role":   p.Role.String(),
			"logged": c.Locals(observability.IdentityLocalKey),
		})
	}
	app.Get("/admin-only", guard.RequireRole(domain.RoleAdmin), whoami)
	app.Get("/signed-in", guard.RequireAuthenticated(), whoami)
	app.Get("/optional", guard.OptionalIdentity(), whoami)
	return app
}

func call(t *testing.T, app *fiber.App, path, authorization string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestRequireRoleAdmin(t *testing.T) {
	app := newGuardApp(t)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusForbidden},
		{"invalid token", "Bearer forged", http.StatusForbidden},
		{"regular user", "Bearer tok-user-1", http.StatusForbidden},
		{"no account record", "Bearer tok-orphan", http.StatusForbidden},
		{"admin", "Bearer tok-admin-1", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, app, "/admin-only", tc.header)
			assert.Equal(t, tc.status, status)
			if status == http.StatusForbidden {
				assert.Equal(t, "insufficient permission", body["error"])
				assert.Equal(t, "FORBIDDEN", body["code"])
			} else {
				assert.Equal(t, "admin-1", body["id"])
				assert.Equal(t, "admin-1", body["logged"])
			}
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	app := newGuardApp(t)

	status, body := call(t, app, "/signed-in", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication required", body["error"])

	status, _ = call(t, app, "/signed-in", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, "/signed-in", "Bearer tok-orphan")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "unknown", body["role"])
}

func TestOptionalIdentity(t *testing.T) {
	app := newGuardApp(t)

	status, body := call(t, app, "/optional", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["id"])

	status, body = call(t, app, "/optional", "Bearer forged")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["id"])

	status, body = call(t, app, "/optional", "Bearer tok-user-1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-1", body["id"])
}

func TestRequireRolePanicsOnUnknownRole(t *testing.T) {
	guard := NewGuard(NewGate(tokensFor(), &fakeResolver{}, nil))
	assert.Panics(t, func() { guard.RequireRole(domain.Role("superuser")) })
	assert.Panics(t, func() { guard.RequireRole(domain.RoleUnknown) })
}

func TestPrincipalIsAdmin(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsAdmin())
	assert.Equal(t, "", nilPrincipal.ID())
	assert.True(t, (&Principal{Identity: &domain.Identity{ID: "x"}, Role: domain.RoleAdmin}).IsAdmin())
	assert.False(t, (&Principal{Role: domain.RoleModerator}).IsAdmin())
}
