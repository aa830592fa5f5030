package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edumedsolutions/edumed/services/ratelimit"
)

// rateLimitMiddleware allows limit requests per client IP and scope in every window.
func rateLimitMiddleware(limiter ratelimit.Limiter, scope string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter != nil && !limiter.Allow(scope+":"+ctx.RealIP(), limit, window) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
