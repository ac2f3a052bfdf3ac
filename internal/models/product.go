package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"not null;uniqueIndex:idx_categories_slug_division"`
	Division  Division  `json:"division" gorm:"type:varchar(20);not null;uniqueIndex:idx_categories_slug_division"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID                   string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title                string              `json:"title" gorm:"not null"`
	Slug                 string              `json:"slug" gorm:"uniqueIndex;not null"`
	Description          string              `json:"description" gorm:"type:text"`
	Price                decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock                int                 `json:"stock" gorm:"not null;check:chk_products_stock,stock >= 0"`
	WholesalePrice       decimal.NullDecimal `json:"wholesale_price" gorm:"type:decimal(12,2)"`
	WholesaleMinQuantity int                 `json:"wholesale_min_quantity"`
	DiscountPercentage   int                 `json:"discount_percentage"`
	IsAvailable          bool                `json:"is_available" gorm:"not null"`
	ImageURL             string              `json:"image_url"`
	CategoryID           string              `json:"category_id" gorm:"type:varchar(36);index"`
	Division             Division            `json:"division" gorm:"type:varchar(20);not null;index"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// UnitPrice is the price charged per unit when quantity units are bought in
// a single line. Wholesale pricing wins over the percentage discount.
func (p *Product) UnitPrice(quantity int) decimal.Decimal {
	if p.WholesalePrice.Valid && p.WholesaleMinQuantity > 0 && quantity >= p.WholesaleMinQuantity {
		return p.WholesalePrice.Decimal.Round(2)
	}
	if p.DiscountPercentage > 0 && p.DiscountPercentage <= 100 {
		factor := decimal.NewFromInt(int64(100 - p.DiscountPercentage)).Div(decimal.NewFromInt(100))
		return p.Price.Mul(factor).Round(2)
	}
	return p.Price.Round(2)
}
