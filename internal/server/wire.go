package server

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	gormrepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"gorm.io/gorm"
)

// bcryptのコスト
const bcryptCost = 12

// 組み立てに必要な外部部品。nil のものは何もしない実装になる
type Deps struct {
	DB        *gorm.DB
	Config    config.Config
	Store     usecase.ImageStore
	Publisher usecase.OrderEventPublisher
	Observer  usecase.CheckoutObserver
	Clock     usecase.Clock
	Log       *logger.Logger
}

// リポジトリ → usecase → handler の組み立て結果
type App struct {
	Handlers  Handlers
	Verifier  *auth.JWTIssuer
	SeedAdmin *auth.SeedAdminUsecase
}

func Build(d Deps) App {
	clock := d.Clock
	if clock == nil {
		clock = usecase.SystemClock{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}

	//Repository（GORM実装）
	userRepo := gormrepo.NewUserRepository(d.DB)
	productRepo := gormrepo.NewProductGormRepository(d.DB)
	categoryRepo := gormrepo.NewCategoryGormRepository(d.DB)
	cartRepo := gormrepo.NewCartItemGormRepository(d.DB)
	orderRepo := gormrepo.NewOrderGormRepository(d.DB)
	orderItemRepo := gormrepo.NewOrderItemGormRepository(d.DB)
	txm := gormrepo.NewTxManagerGorm(d.DB)

	hasher := auth.NewBcryptPasswordHasher(bcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(d.Config.JWTSecret, d.Config.JWTTTL)

	var stock usecase.StockPolicy = usecase.NoopStockPolicy{}
	if d.Config.CheckoutDecrementStock {
		stock = usecase.DecrementStockPolicy{}
	}

	//Usecase
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo, txm, d.Store, clock)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, txm, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, clock, stock, d.Publisher, d.Observer, d.Log)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo)

	//Handler
	gdb := d.DB
	return App{
		Handlers: Handlers{
			Auth:         handler.NewAuthHandler(registerUC, loginUC, d.Log),
			Product:      handler.NewProductHandler(productUC, d.Config.PublicBaseURL, d.Log),
			Category:     handler.NewCategoryHandler(categoryUC, d.Log),
			AdminProduct: handler.NewAdminProductHandler(productUC, d.Config.PublicBaseURL, d.Log),
			Cart:         handler.NewCartHandler(cartUC, d.Log),
			Checkout:     handler.NewCheckoutHandler(checkoutUC, d.Log),
			AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, d.Log),
			Health: handler.NewHealthHandler(func(ctx context.Context) error {
				return db.Ping(ctx, gdb)
			}, d.Log),
		},
		Verifier:  issuer,
		SeedAdmin: auth.NewSeedAdminUsecase(userRepo, hasher),
	}
}
