package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/config"
)

// ConsolePrefix is the path the admin console is served under.
const ConsolePrefix = "/admin"

// EdgeFilter guards browser navigation to the admin console. It re-verifies
// the caller on every request through the verification endpoint.
type EdgeFilter struct {
	client        VerificationClient
	headerName    string
	cookieName    string
	signInPath    string
	forbiddenPath string
	logger        *zap.Logger
}

// NewEdgeFilter constructs the filter from auth configuration.
func NewEdgeFilter(client VerificationClient, cfg config.AuthConfig, logger *zap.Logger) *EdgeFilter {
	return &EdgeFilter{
		client:        client,
		headerName:    cfg.TokenHeader,
		cookieName:    cfg.CookieName,
		signInPath:    cfg.SignInPath,
		forbiddenPath: cfg.ForbiddenPath,
		logger:        logger,
	}
}

// Handle redirects unauthenticated callers to sign-in and non-admins to the
// forbidden page. Mount it with app.Use(ConsolePrefix, filter.Handle).
func (f *EdgeFilter) Handle(c *fiber.Ctx) error {
	if !underConsole(c.Path()) {
		return c.Next()
	}
	token := f.token(c)
	if token == "" {
		return c.Redirect(f.signInPath, fiber.StatusFound)
	}

	result, err := f.client.Verify(c.UserContext(), token)
	if err != nil {
		f.logger.Warn("edge verification failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Redirect(f.signInPath, fiber.StatusFound)
	}
	if !result.Authenticated || result.User == nil {
		return c.Redirect(f.signInPath, fiber.StatusFound)
	}
	if !result.Admin() {
		return c.Redirect(f.forbiddenPath, fiber.StatusFound)
	}
	return c.Next()
}

// underConsole reports whether path is the console root or below it. Use
// matches by string prefix, so siblings like /administrator reach Handle too.
// Anything that does not look like a sibling stays guarded.
func underConsole(path string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(path), ConsolePrefix)
	return !ok || rest == "" || rest[0] == '/'
}

func (f *EdgeFilter) token(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get(f.headerName)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Cookies(f.cookieName))
}
