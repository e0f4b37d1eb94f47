package middleware

import (
	"storefront/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RequestIDHeader = "X-Request-Id"

// リクエストIDを発行（受け取った値があればそれを使う）し、ログのcontextにも入れる
func RequestID(logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqID := req.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, reqID)

			if logg != nil {
				c.SetRequest(req.WithContext(logg.WithRequestID(req.Context(), reqID)))
			}
			return next(c)
		}
	}
}
