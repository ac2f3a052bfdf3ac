package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem captures the product title and unit price at order time so later
// catalog edits do not change historical orders.
type OrderItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	OrderID      string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID    string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductTitle string          `json:"product_title" gorm:"not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	LineTotal    decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time       `json:"created_at"`
}
