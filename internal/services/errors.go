package services

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrProductUnavailable      = errors.New("product unavailable")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidDivision         = errors.New("invalid division")
	ErrShippingAddressRequired = errors.New("shipping address is required for delivery")
	ErrOrderCancelled          = errors.New("order is cancelled")
	ErrNegativeStock           = errors.New("stock cannot go below zero")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrDuplicateProduct        = errors.New("a product with this slug already exists")
	ErrDuplicateCategory       = errors.New("a category with this slug already exists in the store")
	ErrInvalidProduct          = errors.New("invalid product data")
	ErrInvalidStoreConfig      = errors.New("invalid store configuration")
	ErrCartNotFound            = errors.New("cart not found")

	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrCouponDivision  = errors.New("coupon is not valid for this store")
	ErrDuplicateCoupon = errors.New("coupon code already exists")
	ErrInvalidCoupon   = errors.New("invalid coupon value")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// StockError reports a line that asks for more units than the product has.
type StockError struct {
	ProductID string
	Title     string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: %d unit(s) remaining, %d requested", e.Title, e.Available, e.Requested)
}

var businessErrors = []error{
	ErrOrderNotFound, ErrProductNotFound, ErrProductUnavailable, ErrCategoryNotFound,
	ErrEmptyOrder, ErrInvalidQuantity, ErrInvalidStatus, ErrInvalidDivision,
	ErrShippingAddressRequired, ErrOrderCancelled, ErrNegativeStock, ErrInvalidPaymentMethod,
	ErrDuplicateProduct, ErrDuplicateCategory, ErrInvalidProduct, ErrInvalidStoreConfig, ErrCartNotFound,
	ErrCouponNotFound, ErrCouponInactive, ErrCouponExpired, ErrCouponExhausted,
	ErrCouponDivision, ErrDuplicateCoupon, ErrInvalidCoupon,
	ErrUserNotFound, ErrEmailTaken, ErrInvalidCredentials, ErrForbidden, ErrWeakPassword, ErrInvalidEmail,
}

// IsBusinessError reports whether err is an expected rule violation whose
// message can be shown to the caller as-is.
func IsBusinessError(err error) bool {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return true
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
