package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/http/handlers"
	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Models  *handlers.ModelsHandler
	Tags    *handlers.TagsHandler
	Admin   *handlers.AdminHandler
	Guard   *auth.Guard
	Edge    *auth.EdgeFilter
	Metrics fiber.Handler

	RegisterLimit fiber.Handler
	LoginLimit    fiber.Handler

	// AdminAssetsDir holds the built admin UI. Empty serves a placeholder page.
	AdminAssetsDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	signedIn := cfg.Guard.RequireAuthenticated()
	optional := cfg.Guard.OptionalIdentity()

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", orPass(cfg.RegisterLimit), cfg.Auth.Register)
	authGroup.Post("/login", orPass(cfg.LoginLimit), cfg.Auth.Login)
	authGroup.Post("/verify", cfg.Auth.Verify)
	authGroup.Post("/logout", signedIn, cfg.Auth.Logout)
	authGroup.Get("/me", signedIn, cfg.Auth.Me)
	authGroup.Post("/password", signedIn, cfg.Auth.ChangePassword)

	users := api.Group("/users")
	users.Get("/me/favorites", signedIn, cfg.Users.Favorites)
	users.Patch("/me", signedIn, cfg.Users.UpdateMe)
	users.Get("/:id/follow", optional, cfg.Users.FollowStatus)
	users.Post("/:id/follow", signedIn, cfg.Users.Follow)
	users.Delete("/:id/follow", signedIn, cfg.Users.Unfollow)
	users.Get("/:username", cfg.Users.Profile)

	models := api.Group("/models")
	models.Get("", cfg.Models.List)
	models.Post("", signedIn, cfg.Models.Create)
	models.Get("/:id", optional, cfg.Models.Get)
	models.Patch("/:id", signedIn, cfg.Models.Update)
	models.Delete("/:id", signedIn, cfg.Models.Delete)
	models.Post("/:id/download", cfg.Models.Download)
	models.Get("/:id/like", optional, cfg.Models.LikeStatus)
	models.Post("/:id/like", signedIn, cfg.Models.Like)
	models.Delete("/:id/like", signedIn, cfg.Models.Unlike)
	models.Get("/:id/favorite", optional, cfg.Models.FavoriteStatus)
	models.Post("/:id/favorite", signedIn, cfg.Models.Favorite)
	models.Delete("/:id/favorite", signedIn, cfg.Models.Unfavorite)

	api.Get("/tags", cfg.Tags.List)

	admin := api.Group("/admin", cfg.Guard.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users", cfg.Admin.UpdateUser)
	admin.Delete("/users", cfg.Admin.DeleteUser)
	admin.Get("/tags", cfg.Tags.List)
	admin.Post("/tags", cfg.Tags.Create)
	admin.Patch("/tags/:id", cfg.Tags.Rename)
	admin.Delete("/tags/:id", cfg.Tags.Delete)
	admin.Get("/models", cfg.Models.ListAll)
	admin.Patch("/models/:id", cfg.Models.Update)
	admin.Delete("/models/:id", cfg.Models.Delete)
	admin.Get("/stats", cfg.Admin.Stats)

	app.Get("/403", handlers.Forbidden)

	app.Use(auth.ConsolePrefix, cfg.Edge.Handle)
	if cfg.AdminAssetsDir != "" {
		app.Static("/admin", cfg.AdminAssetsDir, fiber.Static{Index: "index.html"})
	} else {
		app.Get("/admin", handlers.AdminPlaceholder)
		app.Get("/admin/*", handlers.AdminPlaceholder)
	}
}

func orPass(h fiber.Handler) fiber.Handler {
	if h != nil {
		return h
	}
	return func(c *fiber.Ctx) error { return c.Next() }
}
