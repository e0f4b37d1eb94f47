package handler

import (
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	uc  *usecase.CategoryUsecase
	log *logger.Logger
}

func NewCategoryHandler(uc *usecase.CategoryUsecase, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"required,max=140"`
}

// 一覧は公開、作成は管理者
func (h *CategoryHandler) RegisterRoutes(public *echo.Group, admin *echo.Group) {
	public.GET("/categories", h.list)
	admin.POST("/categories", h.create)
}

func (h *CategoryHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) create(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	id, err := h.uc.Create(c.Request().Context(), actorID, usecase.CreateCategoryInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{Message: "created", ID: id})
}
