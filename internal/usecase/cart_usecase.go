package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrProductIDRequired = InvalidInput("product_id required")
	ErrInvalidQuantity   = InvalidInput("quantity must be >= 1")
	ErrCartItemNotFound  = NotFound("cart item not found")
	ErrCartItemForbidden = Forbidden("forbidden")
)

// CartUsecase は /cart の業務ロジック。
// 金額はカート追加時ではなく、表示時点の商品価格で計算する。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(cartItemRepo repo.CartItemRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemOutput struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type CartOutput struct {
	Items []CartItemOutput `json:"items"`
	Total string           `json:"total"`
}

// quantity は省略時 1
type AddToCartInput struct {
	ProductID *int64
	Quantity  *int64
}

// カート取得（id順）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, Unauthenticated("unauthorized")
	}

	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, Internal(err)
	}

	products, err := u.productRepo.FindByIDs(ctx, cartProductIDs(items))
	if err != nil {
		return CartOutput{}, Internal(err)
	}

	out := CartOutput{Items: make([]CartItemOutput, 0, len(items))}
	total := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		out.Items = append(out.Items, CartItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     p.Title,
			Quantity:  it.Quantity,
			UnitPrice: p.Price.StringFixed(2),
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	out.Total = total.StringFixed(2)
	return out, nil
}

// カートに追加（同一商品は数量加算）
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddToCartInput) error {
	if userID <= 0 {
		return Unauthenticated("unauthorized")
	}
	if in.ProductID == nil || *in.ProductID <= 0 {
		return ErrProductIDRequired
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	if _, err := u.productRepo.FindByID(ctx, *in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return Internal(err)
	}

	if err := u.cartItemRepo.AddOrIncrement(ctx, userID, *in.ProductID, qty); err != nil {
		return Internal(err)
	}
	return nil
}

// 明細削除。他人の明細は403
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) error {
	if userID <= 0 {
		return Unauthenticated("unauthorized")
	}
	if cartItemID <= 0 {
		return ErrCartItemNotFound
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return Internal(err)
	}
	if item.UserID != userID {
		return ErrCartItemForbidden
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return Internal(err)
	}
	return nil
}

func cartProductIDs(items []model.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
