package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty  = InvalidState("cart empty")
	ErrOutOfStock = InvalidState("out of stock")
)

// 注文イベントの送信はコミット後。失敗してもチェックアウトは成功扱い
const publishTimeout = 5 * time.Second

// チェックアウト中（トランザクション内）に在庫をどう扱うか
type StockPolicy interface {
	Apply(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error
}

// 在庫は減らさない（既定）
type NoopStockPolicy struct{}

func (NoopStockPolicy) Apply(context.Context, repo.TxRepos, []model.OrderItem) error {
	return nil
}

// 在庫が足りるときだけ減らす。足りなければ全体をロールバック
type DecrementStockPolicy struct{}

func (DecrementStockPolicy) Apply(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error {
	for _, it := range items {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return Internal(err)
		}
		if !ok {
			return ErrOutOfStock
		}
	}
	return nil
}

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event model.OrderCreatedEvent) error
}

type CheckoutObserver interface {
	ObserveSuccess(d time.Duration, total decimal.Decimal)
	ObserveFailure(reason string, d time.Duration)
}

type ErrorLogger interface {
	Error(ctx context.Context, msg string, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveSuccess(time.Duration, decimal.Decimal) {}
func (noopObserver) ObserveFailure(string, time.Duration)          {}

type noopPublisher struct{}

func (noopPublisher) PublishOrderCreated(context.Context, model.OrderCreatedEvent) error { return nil }

type noopErrorLogger struct{}

func (noopErrorLogger) Error(context.Context, string, error) {}

// CheckoutUsecase はカートを注文に確定する。
// カートの読み取りから削除までを1トランザクションで行う。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	clock     Clock
	stock     StockPolicy
	publisher OrderEventPublisher
	observer  CheckoutObserver
	log       ErrorLogger
}

// DI。nil は何もしない実装で埋める
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	clock Clock,
	stock StockPolicy,
	publisher OrderEventPublisher,
	observer CheckoutObserver,
	log ErrorLogger,
) *CheckoutUsecase {
	if stock == nil {
		stock = NoopStockPolicy{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if log == nil {
		log = noopErrorLogger{}
	}
	return &CheckoutUsecase{
		tx:        tx,
		clock:     clock,
		stock:     stock,
		publisher: publisher,
		observer:  observer,
		log:       log,
	}
}

type CheckoutOutput struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, Unauthenticated("unauthorized")
	}

	started := time.Now()
	var (
		order     model.Order
		itemCount int
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 読んだ行はコミットまでロックされる
		cartItems, err := r.CartItems().ListByUserIDForUpdate(ctx, userID)
		if err != nil {
			return Internal(err)
		}
		if len(cartItems) == 0 {
			return ErrCartEmpty
		}

		products, err := r.Products().FindByIDs(ctx, cartProductIDs(cartItems))
		if err != nil {
			return Internal(err)
		}

		// 合計は1項目ごとに小数2桁へ丸める
		total := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		cartIDs := make([]int64, 0, len(cartItems))
		for _, it := range cartItems {
			p, ok := products[it.ProductID]
			if !ok {
				return InvalidState(fmt.Sprintf("product %d no longer exists", it.ProductID))
			}
			unit := p.Price.Round(2)
			total = total.Add(unit.Mul(decimal.NewFromInt(it.Quantity))).Round(2)

			orderItems = append(orderItems, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: unit,
			})
			cartIDs = append(cartIDs, it.ID)
		}

		order = model.Order{
			UserID:    userID,
			Total:     total,
			Status:    model.OrderStatusPending,
			CreatedAt: u.clock.Now(),
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return Internal(err)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return Internal(err)
		}

		// 読み取り後に追加された明細は消さない
		deleted, err := r.CartItems().DeleteByIDs(ctx, userID, cartIDs)
		if err != nil {
			return Internal(err)
		}
		if deleted != int64(len(cartIDs)) {
			return Internal(fmt.Errorf("cart changed during checkout: deleted %d of %d items", deleted, len(cartIDs)))
		}

		if err := u.stock.Apply(ctx, r, orderItems); err != nil {
			return err
		}

		itemCount = len(orderItems)
		return nil
	})
	if err != nil {
		u.observer.ObserveFailure(failureReason(err), time.Since(started))
		return CheckoutOutput{}, asUsecaseError(err)
	}

	u.observer.ObserveSuccess(time.Since(started), order.Total)
	u.publishCreated(ctx, order, itemCount)

	return CheckoutOutput{
		OrderID: order.ID,
		Total:   order.Total.StringFixed(2),
	}, nil
}

func (u *CheckoutUsecase) publishCreated(ctx context.Context, order model.Order, itemCount int) {
	// リクエストが切れても送る
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := u.publisher.PublishOrderCreated(pubCtx, model.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total.StringFixed(2),
		ItemCount: itemCount,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		u.log.Error(ctx, "publish order.created failed", err)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrCartEmpty):
		return "cart_empty"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	}
	return string(KindOf(err))
}
