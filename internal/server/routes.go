package server

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/infra/logger"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Category     *handler.CategoryHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	AdminOrder   *handler.AdminOrderHandler
	Health       *handler.HealthHandler
}

type RouteOptions struct {
	Verifier middleware.TokenVerifier
	// nil ならレート制限なし
	Limiter   middleware.RateLimiter
	UploadDir string
	Metrics   *prometheus.Registry
	Log       *logger.Logger
}

func RegisterRoutes(e *echo.Echo, h Handlers, opts RouteOptions) {
	h.Health.RegisterRoutes(e)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(opts.Metrics)))
	}
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	api := e.Group("/api")

	//未ログインでOK
	h.Auth.RegisterRoutes(api,
		[]echo.MiddlewareFunc{middleware.RateLimit(opts.Limiter, "register", opts.Log)},
		[]echo.MiddlewareFunc{middleware.RateLimit(opts.Limiter, "login", opts.Log)},
	)
	h.Product.RegisterRoutes(api)

	//管理者（ロールはトークンの値を見る）
	admin := api.Group("/admin", middleware.AuthJWT(opts.Verifier), middleware.AdminRoleGuard())
	h.Category.RegisterRoutes(api, admin)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)

	//ログインユーザー
	user := api.Group("", middleware.AuthJWT(opts.Verifier))
	h.Cart.RegisterRoutes(user)
	h.Checkout.RegisterRoutes(user)
}

// echoのエラーも {"error": ...} に揃える
func errorHandler(logg *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal error"
		if he, ok := err.(*echo.HTTPError); ok && he.Code < http.StatusInternalServerError {
			code = he.Code
			msg = lowerStatusText(code)
		} else if logg != nil {
			logg.Error(c.Request().Context(), "unhandled error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorResponse{Error: msg})
	}
}
