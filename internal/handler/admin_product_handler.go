package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/infra/logger"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/products のHTTP
type AdminProductHandler struct {
	uc         *usecase.ProductUsecase
	publicBase string
	log        *logger.Logger
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, publicBase string, log *logger.Logger) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, publicBase: publicBase, log: log}
}

// price は数値でも文字列でもよいので生のまま受ける
type createProductRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Slug        string          `json:"slug" validate:"required,max=255"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price" validate:"required"`
	Stock       *int64          `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
}

// 送られたフィールドだけ更新
type updateProductRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	Slug        *string         `json:"slug" validate:"omitempty,max=255"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Stock       *int64          `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
}

type uploadImageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// AuthJWT + AdminRoleGuard 済みのグループに登録
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.DELETE("/products/:id", h.delete)
	g.POST("/products/:id/images", h.uploadImage)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	id, err := h.uc.Create(c.Request().Context(), actorID, usecase.CreateProductInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{Message: "created", ID: id})
}

func (h *AdminProductHandler) update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	productID, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}

	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	err := h.uc.Update(c.Request().Context(), actorID, productID, usecase.UpdateProductInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "updated"})
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	productID, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, productID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "deleted"})
}

// multipart: file, is_cover
func (h *AdminProductHandler) uploadImage(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	productID, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}

	in := usecase.UploadImageInput{IsCover: usecase.ParseIsCover(c.FormValue("is_cover"))}

	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return writeError(c, h.log, usecase.Internal(err))
		}
		defer f.Close()
		in.Filename = fh.Filename
		in.Content = f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// ファイル無しの判定は usecase に任せる（商品の存在確認が先）
	default:
		return badRequest(c, "invalid multipart body")
	}

	url, err := h.uc.UploadImage(c.Request().Context(), actorID, productID, in, baseURL(c, h.publicBase))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, uploadImageResponse{Message: "uploaded", URL: url})
}
