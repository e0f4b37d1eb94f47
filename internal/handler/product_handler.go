package handler

import (
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc         *usecase.ProductUsecase
	publicBase string
	log        *logger.Logger
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, publicBase string, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, publicBase: publicBase, log: log}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), baseURL(c, h.publicBase))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}

	out, err := h.uc.Get(c.Request().Context(), id, baseURL(c, h.publicBase))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
