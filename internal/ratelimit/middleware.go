package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// Middleware throttles a route per client IP. name separates the counters of
// different routes sharing one limiter.
func Middleware(limiter Limiter, name string, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := limiter.Allow(c.UserContext(), name+":"+c.IP(), limit)
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if d.Allowed {
			return c.Next()
		}

		retryAfter := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		logger.Warn("rate limit exceeded", zap.String("limit", name), zap.String("ip", c.IP()))
		return apperrors.NewRateLimited("too many requests", map[string]any{"retry_after": retryAfter})
	}
}
