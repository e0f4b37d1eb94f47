package handler

import (
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cart のHTTP。AuthJWT 済みのグループに登録する
type CartHandler struct {
	uc  *usecase.CartUsecase
	log *logger.Logger
}

func NewCartHandler(uc *usecase.CartUsecase, log *logger.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: log}
}

// 範囲チェックは usecase 側（メッセージを揃えるため）
type addToCartRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.get)
	g.POST("/cart", h.add)
	g.DELETE("/cart/:item_id", h.remove)
}

func (h *CartHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req addToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddToCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "added"})
}

func (h *CartHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	// 数値でないIDは存在しない明細と同じ扱い
	itemID, ok := parseID(c.Param("item_id"))
	if !ok {
		return writeError(c, h.log, usecase.ErrCartItemNotFound)
	}

	if err := h.uc.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "removed"})
}
