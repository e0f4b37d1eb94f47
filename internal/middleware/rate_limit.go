package middleware

import (
	"context"
	"net/http"

	"storefront/internal/infra/logger"

	"github.com/labstack/echo/v4"
)

type RateLimiter interface {
	Allow(ctx context.Context, scope string, id string) (bool, int64, error)
}

// クライアントIPごとの回数制限。limiter が落ちているときは通す
func RateLimit(limiter RateLimiter, scope string, logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ip := c.RealIP()

			allowed, count, err := limiter.Allow(ctx, scope, ip)
			if err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "scope", scope), "rate_limit.unavailable", err)
				}
				return next(c)
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"scope":    scope,
						"ip":       ip,
						"attempts": count,
					}), "rate_limit.blocked")
				}
				return c.JSON(http.StatusTooManyRequests, errorJSON("too many requests"))
			}
			return next(c)
		}
	}
}
