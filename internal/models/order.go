package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClientName       string          `json:"client_name" gorm:"not null"`
	ClientPhone      string          `json:"client_phone"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount         decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	CouponCode       string          `json:"coupon_code,omitempty"`
	ShippingCost     decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2);not null"`
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	ItemsInOrder     int             `json:"items_in_order" gorm:"not null"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	IsPaid           bool            `json:"is_paid" gorm:"not null"`
	PaidAt           *time.Time      `json:"paid_at"`
	DeliveryMethod   DeliveryMethod  `json:"delivery_method" gorm:"type:varchar(20);not null"`
	ShippingAddress  string          `json:"shipping_address,omitempty"`
	Notes            string          `json:"notes,omitempty" gorm:"type:text"`
	Division         Division        `json:"division" gorm:"type:varchar(20);not null;index"`
	Source           OrderSource     `json:"source" gorm:"type:varchar(10);not null"`
	UserID           *string         `json:"user_id,omitempty" gorm:"type:varchar(36);index"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	Items            []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Active reports whether stock is currently held by an order in this state.
func (s OrderStatus) Active() bool {
	return s != OrderCancelled
}

// Paid is the value of the paid flag that accompanies the status.
func (s OrderStatus) Paid() bool {
	return s == OrderPaid || s == OrderDelivered
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "PICKUP"
	DeliveryShipping DeliveryMethod = "DELIVERY"
)

type OrderSource string

const (
	SourceOnline OrderSource = "ONLINE"
	SourcePOS    OrderSource = "POS"
)

// ApplyStatus moves the order to status and keeps the paid flag and paid
// timestamp consistent with it.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.IsPaid = status.Paid()
	if !o.IsPaid {
		o.PaidAt = nil
		return
	}
	if o.PaidAt == nil {
		paidAt := now
		o.PaidAt = &paidAt
	}
}
