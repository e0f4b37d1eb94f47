package usecase

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

var ErrOrderNotFound = NotFound("order not found")

// 管理者向けの注文参照
type AdminOrderUsecase struct {
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
}

func NewAdminOrderUsecase(orderRepo repo.OrderRepository, orderItemRepo repo.OrderItemRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{orderRepo: orderRepo, orderItemRepo: orderItemRepo}
}

type OrderOutput struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Total     string `json:"total"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderDetailOutput struct {
	OrderOutput
	Items []OrderItemOutput `json:"items"`
}

func toOrderOutput(o model.Order) OrderOutput {
	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total.StringFixed(2),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]OrderOutput, error) {
	orders, err := u.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, Internal(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

// 注文1件と明細
func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, InvalidInput("invalid order id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderDetailOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderDetailOutput{}, Internal(err)
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, Internal(err)
	}

	out := OrderDetailOutput{
		OrderOutput: toOrderOutput(o),
		Items:       make([]OrderItemOutput, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	return out, nil
}
