package handler

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/infra/logger"

	"github.com/labstack/echo/v4"
)

// DBの疎通確認
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping Pinger
	log  *logger.Logger
}

func NewHealthHandler(ping Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
}

func (h *HealthHandler) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			if h.log != nil {
				h.log.Error(c.Request().Context(), "health check failed", err)
			}
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "database unavailable"})
		}
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}
