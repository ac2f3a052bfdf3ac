package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Division identifies one of the two storefront brands sharing the database.
type Division string

const (
	DivisionJugueteria Division = "JUGUETERIA"
	DivisionFiestas    Division = "FIESTAS"
)

const DefaultDivision = DivisionJugueteria

func (d Division) Valid() bool {
	return d == DivisionJugueteria || d == DivisionFiestas
}

// ParseDivision accepts an empty string as "not specified".
func ParseDivision(s string) (Division, bool) {
	if s == "" {
		return "", true
	}
	d := Division(s)
	return d, d.Valid()
}

type StoreConfig struct {
	Division        Division        `json:"division" gorm:"primaryKey;type:varchar(20)"`
	DisplayName     string          `json:"display_name" gorm:"not null"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2);not null"`
	FreeShippingMin decimal.Decimal `json:"free_shipping_min" gorm:"type:decimal(12,2);not null"`
	AdminEmail      string          `json:"admin_email"`
	AdminPhone      string          `json:"admin_phone"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DefaultStoreConfig is used when a division has no stored configuration.
func DefaultStoreConfig(d Division) *StoreConfig {
	name := "Festamas"
	if d == DivisionFiestas {
		name = "FiestasYa"
	}
	return &StoreConfig{
		Division:        d,
		DisplayName:     name,
		ShippingCost:    decimal.Zero,
		FreeShippingMin: decimal.Zero,
	}
}

// ShippingFor returns the shipping charge for an order whose discounted
// merchandise amount is net.
func (c *StoreConfig) ShippingFor(method DeliveryMethod, net decimal.Decimal) decimal.Decimal {
	if method != DeliveryShipping {
		return decimal.Zero
	}
	if c.FreeShippingMin.IsPositive() && net.GreaterThanOrEqual(c.FreeShippingMin) {
		return decimal.Zero
	}
	return c.ShippingCost
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&StoreConfig{},
		&Category{},
		&Product{},
		&User{},
		&Coupon{},
		&Order{},
		&OrderItem{},
	}
}
