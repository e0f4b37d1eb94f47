package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 表示用のカバー画像。保存順で最初に is_cover が立っているもの
func (p Product) CoverImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsCover {
			return img, true
		}
	}
	return ProductImage{}, false
}
