package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/infra/logger"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// usecaseのエラーをステータスに変換して返す。
// 想定外のエラーはログに残して500にする（原因はレスポンスに出さない）
func writeError(c echo.Context, logg *logger.Logger, err error) error {
	if err == nil {
		return nil
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
		return c.JSON(echoErr.Code, ErrorResponse{Error: strings.ToLower(http.StatusText(echoErr.Code))})
	}

	he, ok := usecase.AsHTTPError(err)
	if ok && he.Kind != usecase.KindInternal {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	if logg != nil {
		ctx := c.Request().Context()
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			ctx = logg.WithFields(ctx, map[string]any{
				"pg_code":       pgErr.Code,
				"pg_constraint": pgErr.ConstraintName,
			})
		}
		logg.Error(ctx, "request failed", err)
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// AuthJWT が入れた user_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return 0, false
	}
	return id.UserID, true
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 画像URLの基準。設定が無ければリクエストの scheme://host
func baseURL(c echo.Context, public string) string {
	if public != "" {
		return public
	}
	return c.Scheme() + "://" + c.Request().Host
}

// Bind + Validate。失敗は400
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return usecase.InvalidInput("invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(dst); err != nil {
			return err
		}
	}
	return nil
}
