package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/asset"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// numeric(10,2) に入る上限
var maxPrice = decimal.RequireFromString("99999999.99")

var (
	ErrProductNotFound = NotFound("product not found")
	ErrSlugExists      = Conflict("slug already exists")
	ErrInvalidPrice    = InvalidInput("invalid price")
	ErrInvalidStock    = InvalidInput("stock must be >= 0")
	ErrUnknownCategory = InvalidInput("unknown category_id")
	ErrFileRequired    = InvalidInput("file missing")
)

// 画像ファイルの保存先
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, storedURL string) error
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	store       ImageStore
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	store ImageStore,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		store:       store,
		clock:       clock,
	}
}

// 一覧の1件
type ProductSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Price       string  `json:"price"`
	Stock       int64   `json:"stock"`
	CategoryID  *int64  `json:"category_id"`
	CoverURL    string  `json:"cover_url,omitempty"`
}

// 詳細。画像URLは保存順
type ProductDetail struct {
	ProductSummary
	Images []string `json:"images"`
}

func toProductSummary(p model.Product, base string) ProductSummary {
	s := ProductSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
	if cover, ok := p.CoverImage(); ok {
		s.CoverURL = asset.Resolve(cover.URL, base)
	}
	return s
}

// GET /products
func (u *ProductUsecase) List(ctx context.Context, base string) ([]ProductSummary, error) {
	products, err := u.productRepo.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}

	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, toProductSummary(p, base))
	}
	return out, nil
}

// GET /products/:id
func (u *ProductUsecase) Get(ctx context.Context, productID int64, base string) (ProductDetail, error) {
	if productID <= 0 {
		return ProductDetail{}, InvalidInput("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, ErrProductNotFound
	}
	if err != nil {
		return ProductDetail{}, Internal(err)
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, asset.Resolve(img.URL, base))
	}
	return ProductDetail{ProductSummary: toProductSummary(p, base), Images: images}, nil
}

// 価格はJSONの数値でも文字列でも受け付ける。小数2桁に丸める
func ParsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, ErrInvalidPrice
		}
		text = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	d = d.Round(2)
	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return d, nil
}

// フォームの is_cover。"true"（大小文字無視）だけが true
func ParseIsCover(raw string) bool {
	return strings.EqualFold(raw, "true")
}

type CreateProductInput struct {
	Title       string
	Slug        string
	Description *string
	Price       json.RawMessage
	Stock       *int64
	CategoryID  *int64
}

func (u *ProductUsecase) Create(ctx context.Context, actorID int64, in CreateProductInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	slug := strings.TrimSpace(in.Slug)
	if title == "" || slug == "" || len(in.Price) == 0 {
		return 0, InvalidInput("title, slug and price required")
	}

	price, err := ParsePrice(in.Price)
	if err != nil {
		return 0, err
	}
	var stock int64
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return 0, ErrInvalidStock
	}

	p := model.Product{
		Title:       title,
		Slug:        slug,
		Description: in.Description,
		Price:       price,
		Stock:       stock,
		CategoryID:  in.CategoryID,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := checkCategory(ctx, r.Categories(), in.CategoryID); err != nil {
			return err
		}
		if err := r.Products().Create(ctx, &p); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrSlugExists
			}
			return Internal(err)
		}
		return writeAudit(ctx, r, u.clock, actorID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, map[string]any{
			"title": p.Title,
			"slug":  p.Slug,
			"price": p.Price.StringFixed(2),
			"stock": p.Stock,
		})
	})
	if err != nil {
		return 0, asUsecaseError(err)
	}
	return p.ID, nil
}

// 部分更新。nil は「送られていない」
type UpdateProductInput struct {
	Title       *string
	Slug        *string
	Description *string
	Price       json.RawMessage
	Stock       *int64
	CategoryID  *int64
}

func (in UpdateProductInput) toPatch() (repo.ProductPatch, error) {
	patch := repo.ProductPatch{
		Description: in.Description,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return patch, InvalidInput("title must not be empty")
		}
		patch.Title = &t
	}
	if in.Slug != nil {
		s := strings.TrimSpace(*in.Slug)
		if s == "" {
			return patch, InvalidInput("slug must not be empty")
		}
		patch.Slug = &s
	}
	if len(in.Price) > 0 {
		price, err := ParsePrice(in.Price)
		if err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	if in.Stock != nil && *in.Stock < 0 {
		return patch, ErrInvalidStock
	}
	return patch, nil
}

func (u *ProductUsecase) Update(ctx context.Context, actorID int64, productID int64, in UpdateProductInput) error {
	if productID <= 0 {
		return InvalidInput("invalid product id")
	}
	patch, err := in.toPatch()
	if err != nil {
		return err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 空の更新でも存在しなければ404
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return Internal(err)
		}
		if patch.IsEmpty() {
			return nil
		}
		if err := checkCategory(ctx, r.Categories(), patch.CategoryID); err != nil {
			return err
		}

		if err := r.Products().Update(ctx, productID, patch); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return ErrProductNotFound
			case errors.Is(err, repo.ErrDuplicate):
				return ErrSlugExists
			}
			return Internal(err)
		}
		return writeAudit(ctx, r, u.clock, actorID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, patchDetail(patch))
	})
	return asUsecaseError(err)
}

// 画像とカート明細ごと消す。注文明細は残る
func (u *ProductUsecase) Delete(ctx context.Context, actorID int64, productID int64) error {
	if productID <= 0 {
		return InvalidInput("invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().Delete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return Internal(err)
		}
		return writeAudit(ctx, r, u.clock, actorID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, nil)
	})
	return asUsecaseError(err)
}

type UploadImageInput struct {
	Filename string
	// nil ならファイル無し
	Content io.Reader
	IsCover bool
}

// 画像を保存して商品に紐付ける。戻り値は絶対URL
func (u *ProductUsecase) UploadImage(ctx context.Context, actorID int64, productID int64, in UploadImageInput, base string) (string, error) {
	if productID <= 0 {
		return "", InvalidInput("invalid product id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", Internal(err)
	}
	if in.Content == nil || strings.TrimSpace(in.Filename) == "" {
		return "", ErrFileRequired
	}

	storedURL, err := u.store.Save(ctx, in.Filename, in.Content)
	if err != nil {
		return "", Internal(fmt.Errorf("save upload: %w", err))
	}

	img := model.ProductImage{ProductID: productID, URL: storedURL, IsCover: in.IsCover}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().AddImage(ctx, &img); err != nil {
			return Internal(err)
		}
		return writeAudit(ctx, r, u.clock, actorID, model.AuditActionUploadImage, model.AuditResourceProduct, productID, map[string]any{
			"image_id": img.ID,
			"url":      img.URL,
			"is_cover": img.IsCover,
		})
	})
	if err != nil {
		// 行が無いファイルは残さない
		if rmErr := u.store.Remove(context.WithoutCancel(ctx), storedURL); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return "", asUsecaseError(err)
	}

	return asset.Resolve(storedURL, base), nil
}

func checkCategory(ctx context.Context, categories repo.CategoryRepository, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := categories.Exists(ctx, *id)
	if err != nil {
		return Internal(err)
	}
	if !ok {
		return ErrUnknownCategory
	}
	return nil
}

func patchDetail(p repo.ProductPatch) map[string]any {
	d := map[string]any{}
	if p.Title != nil {
		d["title"] = *p.Title
	}
	if p.Slug != nil {
		d["slug"] = *p.Slug
	}
	if p.Description != nil {
		d["description"] = *p.Description
	}
	if p.Price != nil {
		d["price"] = p.Price.StringFixed(2)
	}
	if p.Stock != nil {
		d["stock"] = *p.Stock
	}
	if p.CategoryID != nil {
		d["category_id"] = *p.CategoryID
	}
	return d
}
