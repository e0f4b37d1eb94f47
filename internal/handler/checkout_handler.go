package handler

import (
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc  *usecase.CheckoutUsecase
	log *logger.Logger
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, log: log}
}

type checkoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

func (h *CheckoutHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/checkout", h.checkout)
}

// POST /checkout（ボディ無し）
func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, checkoutResponse{
		Message: "order_created",
		OrderID: out.OrderID,
		Total:   out.Total,
	})
}
