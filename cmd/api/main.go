package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	"storefront/internal/infra/queue"
	"storefront/internal/infra/ratelimit"
	"storefront/internal/infra/storage"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

func main() {
	// .env は任意
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "storefront"}).Error(context.Background(), "config.load_failed", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server.exit", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logg *logger.Logger) (err error) {
	//DB接続
	gdb, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close(gdb)) }()

	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	//注文イベント
	var publisher usecase.OrderEventPublisher = queue.NoopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AMQPURL, cfg.OrderEventsQueue)
	}

	//レート制限（redis無しなら無効）
	var limiter middleware.RateLimiter
	if cfg.RedisURL != "" {
		var rdb *redis.Client
		rdb, err = ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, rdb.Close()) }()
		limiter = ratelimit.NewFixedWindow(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	reg := metrics.NewRegistry()
	app := server.Build(server.Deps{
		DB:        gdb,
		Config:    cfg,
		Store:     store,
		Publisher: publisher,
		Observer:  metrics.NewCheckoutMetrics(reg),
		Clock:     usecase.SystemClock{},
		Log:       logg,
	})

	if cfg.AdminEmail != "" {
		u, created, err := app.SeedAdmin.Execute(ctx, auth.SeedAdminInput{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			FullName: cfg.AdminFullName,
		})
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{"user_id": u.ID, "created": created}), "admin.seeded")
	}

	e := server.New(app.Handlers, server.Options{
		RouteOptions: server.RouteOptions{
			Verifier:  app.Verifier,
			Limiter:   limiter,
			UploadDir: store.Dir(),
			Metrics:   reg,
			Log:       logg,
		},
		BodyLimit: cfg.MaxUploadSize,
	})

	return server.Start(ctx, e, cfg.Addr(), logg)
}
