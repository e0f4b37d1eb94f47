package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/infra/logger"
	"storefront/internal/middleware"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	RouteOptions
	// "10M" のような echo の BodyLimit 形式。空なら制限なし
	BodyLimit string
}

// ミドルウェアとルートを載せた echo を返す
func New(h Handlers, opts Options) *echo.Echo {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorHandler(opts.Log)

	e.Use(echomw.Recover())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	e.Use(middleware.RequestID(opts.Log))
	e.Use(middleware.RequestLogger(opts.Log))

	RegisterRoutes(e, h, opts.RouteOptions)
	return e
}

// ctx が終わるまで待ち受ける。終了時は処理中のリクエストを待つ
func Start(ctx context.Context, e *echo.Echo, addr string, logg *logger.Logger) error {
	if logg == nil {
		logg = logger.Nop()
	}
	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "server.listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func lowerStatusText(code int) string {
	return strings.ToLower(http.StatusText(code))
}
