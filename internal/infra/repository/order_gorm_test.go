package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_ListAll_NewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewOrderGormRepository(gdb)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o1 := model.Order{UserID: 1, Total: decimal.NewFromInt(1), Status: model.OrderStatusPending, CreatedAt: base}
	o2 := model.Order{UserID: 2, Total: decimal.NewFromInt(2), Status: model.OrderStatusPending, CreatedAt: base.Add(time.Hour)}
	o3 := model.Order{UserID: 3, Total: decimal.NewFromInt(3), Status: model.OrderStatusPending, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, r.Create(ctx, &o1))
	require.NoError(t, r.Create(ctx, &o2))
	require.NoError(t, r.Create(ctx, &o3))

	orders, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{o3.ID, o2.ID, o1.ID}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestOrderItem_CreateBulkSetsOrderID(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	items := []model.OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}
	r := NewOrderItemGormRepository(gdb)
	require.NoError(t, r.CreateBulk(ctx, 7, items))

	got, err := r.ListByOrderID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].OrderID)
	assert.True(t, got[0].Subtotal().Equal(decimal.RequireFromString("20")))
}

// fnがエラーを返すとロールバックされる
func TestTxManager_RollsBackOnError(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	tm := NewTxManagerGorm(gdb)

	boom := errors.New("boom")
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		o := model.Order{UserID: 1, Total: decimal.NewFromInt(1), Status: model.OrderStatusPending, CreatedAt: time.Now()}
		if err := r.Orders().Create(ctx, &o); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInventory_DecreaseStockIfEnough(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, gdb, "a", "1.00") // stock 10

	r := NewInventoryGormRepository(gdb)
	ok, err := r.DecreaseStockIfEnough(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.DecreaseStockIfEnough(ctx, p.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	var got model.Product
	require.NoError(t, gdb.First(&got, p.ID).Error)
	assert.Equal(t, int64(6), got.Stock)
}

func TestAuditLog_CreateAndList(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewAuditLogGormRepository(gdb)

	require.NoError(t, r.Create(ctx, model.AuditLog{ActorUserID: 1, Action: model.AuditActionCreateProduct, ResourceType: model.AuditResourceProduct, ResourceID: 5, CreatedAt: time.Now()}))
	require.NoError(t, r.Create(ctx, model.AuditLog{ActorUserID: 1, Action: model.AuditActionDeleteProduct, ResourceType: model.AuditResourceProduct, ResourceID: 5, CreatedAt: time.Now()}))
	require.NoError(t, r.Create(ctx, model.AuditLog{ActorUserID: 1, Action: model.AuditActionCreateProduct, ResourceType: model.AuditResourceProduct, ResourceID: 6, CreatedAt: time.Now()}))

	logs, err := r.ListByResource(ctx, model.AuditResourceProduct, 5)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditActionCreateProduct, logs[0].Action)
	assert.Equal(t, model.AuditActionDeleteProduct, logs[1].Action)
}

func TestCategory_CreateExistsDuplicate(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	r := NewCategoryGormRepository(gdb)

	c := model.Category{Name: "Tea", Slug: "tea"}
	require.NoError(t, r.Create(ctx, &c))

	ok, err := r.Exists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, r.Create(ctx, &model.Category{Name: "Tea", Slug: "tea-2"}), repo.ErrDuplicate)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
