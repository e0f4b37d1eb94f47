package handler

import (
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/orders（閲覧のみ）
type AdminOrderHandler struct {
	uc  *usecase.AdminOrderUsecase
	log *logger.Logger
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, log *logger.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, log: log}
}

func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return writeError(c, h.log, usecase.ErrOrderNotFound)
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
