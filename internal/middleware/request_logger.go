package middleware

import (
	"net/http"
	"time"

	"storefront/internal/infra/logger"

	"github.com/labstack/echo/v4"
)

// 1リクエスト1行のアクセスログ。5xxはerrorで出す
func RequestLogger(logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// echoのエラーハンドラでステータスを確定させる
				c.Error(err)
			}

			status := c.Response().Status
			fields := map[string]any{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if userID, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields["user_id"] = userID
			}
			ctx := logg.WithFields(c.Request().Context(), fields)

			if status >= http.StatusInternalServerError {
				logg.Error(ctx, "request.complete", err)
			} else {
				logg.Info(ctx, "request.complete")
			}
			return nil
		}
	}
}
