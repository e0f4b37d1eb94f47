package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//管理者用の注文一覧（新しい順）
	ListAll(ctx context.Context) ([]model.Order, error)
}
