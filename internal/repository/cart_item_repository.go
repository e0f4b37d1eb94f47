package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// チェックアウト用。読んだ行をトランザクション終了までロックする
	ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// 同一商品は数量加算（INSERT ... ON CONFLICT）
	AddOrIncrement(ctx context.Context, userID int64, productID int64, qty int64) error

	DeleteByID(ctx context.Context, cartItemID int64) error
	// 指定IDだけ消す。削除件数を返す
	DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error)
}
