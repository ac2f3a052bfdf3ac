package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

type Coupon struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Code         string          `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountType DiscountType    `json:"discount_type" gorm:"type:varchar(20);not null"`
	Value        decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	UsageCount   int             `json:"usage_count" gorm:"not null"`
	MaxUses      *int            `json:"max_uses"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	Division     Division        `json:"division,omitempty" gorm:"type:varchar(20)"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DiscountFor returns the amount taken off subtotal. Fixed discounts never
// exceed the subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountPercentage:
		return subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		if c.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return c.Value.Round(2)
	}
	return decimal.Zero
}

func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsageCount >= *c.MaxUses
}
