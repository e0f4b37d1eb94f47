package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 部分更新。nil のフィールドは触らない
type ProductPatch struct {
	Title       *string
	Slug        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	CategoryID  *int64
}

func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Slug == nil && p.Description == nil &&
		p.Price == nil && p.Stock == nil && p.CategoryID == nil
}

// 商品の永続化（保存・取得）だけを約束。
// 画像は id 昇順で読み込む。
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id int64, patch ProductPatch) error
	// 画像とカート明細もまとめて消す
	Delete(ctx context.Context, id int64) error

	AddImage(ctx context.Context, img *model.ProductImage) error
}
