package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// 記録用のフェイク
// =====================

type recordingObserver struct {
	successes []decimal.Decimal
	failures  []string
}

func (o *recordingObserver) ObserveSuccess(_ time.Duration, total decimal.Decimal) {
	o.successes = append(o.successes, total)
}

func (o *recordingObserver) ObserveFailure(reason string, _ time.Duration) {
	o.failures = append(o.failures, reason)
}

type recordingPublisher struct {
	events []model.OrderCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e model.OrderCreatedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type recordingLogger struct {
	errs []error
}

func (l *recordingLogger) Error(_ context.Context, _ string, err error) {
	l.errs = append(l.errs, err)
}

type failingStockPolicy struct{ err error }

func (p failingStockPolicy) Apply(context.Context, repo.TxRepos, []model.OrderItem) error {
	return p.err
}

func newCheckout(env *testEnv, stock usecase.StockPolicy, pub usecase.OrderEventPublisher, obs usecase.CheckoutObserver, log usecase.ErrorLogger) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(env.tx, env.clock, stock, pub, obs, log)
}

// =====================
// sqlite を使った結合テスト
// =====================

// A×2@10.00 と B×1@5.00 で合計 25.00、明細はスナップショット、カートは空
func TestCheckout_CreatesOrderAndDrainsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "10.00", 5)
	b := env.seedProduct(t, "b", "5.00", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 2))
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, b.ID, 1))

	obs := &recordingObserver{}
	pub := &recordingPublisher{}
	out, err := newCheckout(env, nil, pub, obs, nil).Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", out.Total)

	order, err := env.orders.FindByID(ctx, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(dec("25")))
	assert.True(t, order.CreatedAt.Equal(testNow))

	items, err := env.orderItems.ListByOrderID(ctx, out.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, sum.Equal(order.Total))

	cart, err := env.cartItems.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	// 在庫は既定では減らない
	pa, err := env.products.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pa.Stock)

	require.Len(t, pub.events, 1)
	assert.Equal(t, out.OrderID, pub.events[0].OrderID)
	assert.Equal(t, "25.00", pub.events[0].Total)
	assert.Equal(t, 2, pub.events[0].ItemCount)
	require.Len(t, obs.successes, 1)
	assert.Empty(t, obs.failures)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "buyer@example.com")
	obs := &recordingObserver{}
	pub := &recordingPublisher{}

	_, err := newCheckout(env, nil, pub, obs, nil).Checkout(context.Background(), u.ID)

	assert.ErrorIs(t, err, usecase.ErrCartEmpty)
	assert.Equal(t, usecase.KindInvalidState, usecase.KindOf(err))
	assert.Zero(t, env.count(t, &model.Order{}))
	assert.Equal(t, []string{"cart_empty"}, obs.failures)
	assert.Empty(t, pub.events)
}

// 確定後の値上げは注文に影響しない
func TestCheckout_LaterPriceChangeDoesNotAffectOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "10.00", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 3))

	out, err := newCheckout(env, nil, nil, nil, nil).Checkout(ctx, u.ID)
	require.NoError(t, err)

	newPrice := dec("99.99")
	require.NoError(t, env.products.Update(ctx, a.ID, repo.ProductPatch{Price: &newPrice}))

	order, err := env.orders.FindByID(ctx, out.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("30")))

	items, err := env.orderItems.ListByOrderID(ctx, out.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].UnitPrice.Equal(dec("10")))
}

// 他のユーザーのカートには触らない
func TestCheckout_OnlyDrainsCallersCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u1 := env.seedUser(t, "u1@example.com")
	u2 := env.seedUser(t, "u2@example.com")
	a := env.seedProduct(t, "a", "1.50", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u1.ID, a.ID, 1))
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u2.ID, a.ID, 4))

	out, err := newCheckout(env, nil, nil, nil, nil).Checkout(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.50", out.Total)

	left, err := env.cartItems.ListByUserID(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(4), left[0].Quantity)
}

// 在庫フックで失敗したら注文もカート削除も残らない
func TestCheckout_StockHookFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "10.00", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 2))

	obs := &recordingObserver{}
	pub := &recordingPublisher{}
	_, err := newCheckout(env, failingStockPolicy{err: errors.New("hook failed")}, pub, obs, nil).Checkout(ctx, u.ID)

	require.Error(t, err)
	assert.Equal(t, usecase.KindInternal, usecase.KindOf(err))
	assert.Zero(t, env.count(t, &model.Order{}))
	assert.Zero(t, env.count(t, &model.OrderItem{}))
	assert.Equal(t, int64(1), env.count(t, &model.CartItem{}))
	assert.Equal(t, []string{"internal"}, obs.failures)
	assert.Empty(t, pub.events)
}

func TestCheckout_DecrementStockPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "10.00", 3)
	b := env.seedProduct(t, "b", "2.00", 1)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 2))
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, b.ID, 1))

	uc := newCheckout(env, usecase.DecrementStockPolicy{}, nil, nil, nil)
	_, err := uc.Checkout(ctx, u.ID)
	require.NoError(t, err)

	pa, err := env.products.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pa.Stock)

	// 在庫不足は全体がロールバック
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 1))
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, b.ID, 1))
	_, err = uc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, usecase.ErrOutOfStock)

	pa, err = env.products.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pa.Stock)
	assert.Equal(t, int64(1), env.count(t, &model.Order{}))
	assert.Equal(t, int64(2), env.count(t, &model.CartItem{}))
}

// イベント送信の失敗はログに残すだけ
func TestCheckout_PublishFailureIsLogged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "10.00", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 1))

	pub := &recordingPublisher{err: errors.New("broker down")}
	log := &recordingLogger{}
	out, err := newCheckout(env, nil, pub, nil, log).Checkout(ctx, u.ID)

	require.NoError(t, err)
	assert.NotZero(t, out.OrderID)
	require.Len(t, log.errs, 1)
	assert.EqualError(t, log.errs[0], "broker down")
}

// 小数は1項目ごとに丸めて積み上げる
func TestCheckout_TotalRoundedPerTerm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	a := env.seedProduct(t, "a", "0.10", 5)
	b := env.seedProduct(t, "b", "0.20", 5)
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, a.ID, 3))
	require.NoError(t, env.cartItems.AddOrIncrement(ctx, u.ID, b.ID, 1))

	out, err := newCheckout(env, nil, nil, nil, nil).Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.50", out.Total)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// CheckoutTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type CheckoutTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *CheckoutTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type CheckoutTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	products   repo.ProductRepository
}

func (r *CheckoutTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *CheckoutTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *CheckoutTxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *CheckoutTxReposMock) Products() repo.ProductRepository     { return r.products }

// チェックアウトでは使わない
func (r *CheckoutTxReposMock) Categories() repo.CategoryRepository { return nil }
func (r *CheckoutTxReposMock) Inventory() repo.InventoryRepository { return nil }
func (r *CheckoutTxReposMock) AuditLogs() repo.AuditLogRepository  { return nil }

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	panic("not used in checkout")
}

func (m *CartItemRepoMock) ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	panic("not used in checkout")
}

func (m *CartItemRepoMock) AddOrIncrement(ctx context.Context, userID int64, productID int64, qty int64) error {
	panic("not used in checkout")
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	panic("not used in checkout")
}

func (m *CartItemRepoMock) DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context) ([]model.Product, error) {
	panic("not used in checkout")
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	panic("not used in checkout")
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).(map[int64]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p *model.Product) error {
	panic("not used in checkout")
}

func (m *ProductRepoMock) Update(ctx context.Context, id int64, patch repo.ProductPatch) error {
	panic("not used in checkout")
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in checkout")
}

func (m *ProductRepoMock) AddImage(ctx context.Context, img *model.ProductImage) error {
	panic("not used in checkout")
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	order.ID = 100
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in checkout")
}

func (m *OrderRepoMock) ListAll(ctx context.Context) ([]model.Order, error) {
	panic("not used in checkout")
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	panic("not used in checkout")
}

// 読んだ件数と消えた件数が違えばエラー（ロールバックさせる）
func TestCheckout_DeleteCountMismatch_ReturnsInternal(t *testing.T) {
	carts := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	tx := &CheckoutTxManagerMock{Repos: &CheckoutTxReposMock{
		orders:     orders,
		orderItems: orderItems,
		cartItems:  carts,
		products:   products,
	}}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("ListByUserIDForUpdate", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 11, UserID: 1, ProductID: 5, Quantity: 2},
		{ID: 12, UserID: 1, ProductID: 6, Quantity: 1},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{5, 6}).Return(map[int64]model.Product{
		5: {ID: 5, Price: dec("10.00")},
		6: {ID: 6, Price: dec("5.00")},
	}, nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.UserID == 1 && o.Total.Equal(dec("25")) && o.Status == model.OrderStatusPending
	})).Return(nil)
	orderItems.On("CreateBulk", mock.Anything, int64(100), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	carts.On("DeleteByIDs", mock.Anything, int64(1), []int64{11, 12}).Return(int64(1), nil)

	obs := &recordingObserver{}
	pub := &recordingPublisher{}
	uc := usecase.NewCheckoutUsecase(tx, fixedClock{testNow}, nil, pub, obs, nil)

	_, err := uc.Checkout(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, usecase.KindInternal, usecase.KindOf(err))
	assert.Empty(t, pub.events)
	assert.Equal(t, []string{"internal"}, obs.failures)
	tx.AssertExpectations(t)
	carts.AssertExpectations(t)
	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
}

func TestCheckout_MissingProduct_InvalidState(t *testing.T) {
	carts := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	tx := &CheckoutTxManagerMock{Repos: &CheckoutTxReposMock{cartItems: carts, products: products}}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("ListByUserIDForUpdate", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 11, UserID: 1, ProductID: 5, Quantity: 2},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{5}).Return(map[int64]model.Product{}, nil)

	_, err := usecase.NewCheckoutUsecase(tx, fixedClock{testNow}, nil, nil, nil, nil).Checkout(context.Background(), 1)

	assert.Equal(t, usecase.KindInvalidState, usecase.KindOf(err))
}

func TestCheckout_RequiresUser(t *testing.T) {
	tx := new(CheckoutTxManagerMock)
	_, err := usecase.NewCheckoutUsecase(tx, fixedClock{testNow}, nil, nil, nil, nil).Checkout(context.Background(), 0)

	assert.Equal(t, usecase.KindUnauthenticated, usecase.KindOf(err))
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}
